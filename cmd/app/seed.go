package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trinitydb/impossible-trinity/internal/domain"
	"github.com/trinitydb/impossible-trinity/internal/repository"
	"github.com/trinitydb/impossible-trinity/internal/repository/dao"
	"github.com/trinitydb/impossible-trinity/internal/service"
)

const (
	seedAdminUsername = "admin"
	seedAdminPassword = "admin123"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the tables, a default admin and the sample entry",
	Long: `Create the tables, an admin/admin123 account when no "admin" user
exists, and the Mundell-Fleming trilemma when it is missing. Running it twice
changes nothing.`,
	RunE: runSeed,
}

var mundellFleming = domain.Trinity{
	Name:        "蒙代尔不可能三角",
	NameEn:      "Mundell-Fleming Trilemma",
	Field:       "宏观经济学",
	Element1:    "资本自由流动",
	Element2:    "固定汇率",
	Element3:    "独立的货币政策",
	Description: `蒙代尔不可能三角（又称"三难选择"）是国际经济学中的一个理论，指在开放经济中，一个国家不可能同时实现资本自由流动、固定汇率和独立的货币政策这三个目标，最多只能同时实现其中的两个。`,
	Element1Sacrifice: "当选择固定汇率和独立的货币政策时，必须限制资本自由流动。典型例子：中国内地。中国实行固定汇率制度（钉住美元），并保持独立的货币政策。" +
		"为了维持这两个目标，中国必须实施严格的资本管制，限制资本的自由进出，确保央行能够自主调节利率和货币供应量。",
	Element2Sacrifice: "当选择资本自由流动和独立的货币政策时，必须放弃固定汇率，允许汇率自由浮动。典型例子：美国。" +
		"美联储可以根据国内经济状况独立制定货币政策，汇率则根据市场供需自由波动，美国接受这种汇率波动作为独立货币政策的代价。",
	Element3Sacrifice: "当选择资本自由流动和固定汇率时，必须放弃独立的货币政策。典型例子：香港。香港实行联系汇率制度，港币与美元挂钩（7.8港币兑1美元），同时允许资本完全自由流动。" +
		"香港的货币政策必须跟随美联储，否则套利活动会破坏联系汇率制度。",
	Hyperlink:       "https://zh.wikipedia.org/wiki/蒙代尔-弗莱明模型",
	FeatureImageURL: "https://upload.wikimedia.org/wikipedia/commons/thumb/5/5a/Impossible_trinity.svg/800px-Impossible_trinity.svg.png",
}

type seedReport struct {
	AdminCreated  bool
	SampleCreated bool
}

func runSeed(cmd *cobra.Command, _ []string) error {
	_, database, err := bootstrap()
	if err != nil {
		return err
	}

	report, err := seed(cmd.Context(), database)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if report.AdminCreated {
		fmt.Fprintf(out, "Admin user created (username: %s, password: %s)\n", seedAdminUsername, seedAdminPassword)
	}
	if report.SampleCreated {
		fmt.Fprintln(out, "Mundell-Fleming trilemma created.")
	} else {
		fmt.Fprintln(out, "Mundell-Fleming trilemma already exists, skipping creation.")
	}

	return nil
}

func seed(ctx context.Context, database *gorm.DB) (seedReport, error) {
	var report seedReport

	userRepo := repository.NewUserRepository(dao.NewUserDAO(database))
	trinityRepo := repository.NewTrinityRepository(dao.NewTrinityDAO(database))

	admin, err := userRepo.FindByUsername(ctx, seedAdminUsername)
	if errors.Is(err, repository.ErrUserNotFound) {
		admin, err = service.NewAuthService(userRepo).CreateAdmin(ctx, seedAdminUsername, seedAdminPassword)
		report.AdminCreated = err == nil
	}
	if err != nil {
		return seedReport{}, fmt.Errorf("seeding admin -> %w", err)
	}

	exists, err := trinityRepo.ExistsByName(ctx, mundellFleming.Name)
	if err != nil {
		return seedReport{}, fmt.Errorf("trinityRepo.ExistsByName -> %w", err)
	}
	if !exists {
		if _, err = service.NewTrinityService(trinityRepo).Create(ctx, mundellFleming, domain.NewActor(admin)); err != nil {
			return seedReport{}, fmt.Errorf("seeding sample entry -> %w", err)
		}
		report.SampleCreated = true
	}

	zap.L().Info("seed finished", zap.Bool("admin_created", report.AdminCreated), zap.Bool("sample_created", report.SampleCreated))

	return report, nil
}
