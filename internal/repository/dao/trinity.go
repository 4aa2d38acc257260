package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTrinityNotFound = errors.New("impossible trinity not found")

const importBatchSize = 25

type Trinity struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:200;not null"`
	NameEn      string `gorm:"size:200"`
	Field       string `gorm:"size:100;not null;index"`
	Element1    string `gorm:"column:element1;size:100;not null"`
	Element2    string `gorm:"column:element2;size:100;not null"`
	Element3    string `gorm:"column:element3;size:100;not null"`
	Description string `gorm:"type:text;not null"`

	Element1Sacrifice string `gorm:"column:element1_sacrifice_explanation;type:text"`
	Element2Sacrifice string `gorm:"column:element2_sacrifice_explanation;type:text"`
	Element3Sacrifice string `gorm:"column:element3_sacrifice_explanation;type:text"`

	Hyperlink        string `gorm:"size:500"`
	FeatureImageURL  string `gorm:"column:feature_image_url;size:500"`
	Element1ImageURL string `gorm:"column:element1_image_url;size:500"`
	Element2ImageURL string `gorm:"column:element2_image_url;size:500"`
	Element3ImageURL string `gorm:"column:element3_image_url;size:500"`

	AgreeCount int `gorm:"not null;default:0"`

	CreatorID uint      `gorm:"not null;index"`
	Creator   User      `gorm:"foreignKey:CreatorID"`
	Comments  []Comment `gorm:"foreignKey:TrinityID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (Trinity) TableName() string {
	return "impossible_trinities"
}

// editableColumns are the columns an edit replaces. The agree counter and
// creator are never touched by an edit.
var editableColumns = []string{
	"name", "name_en", "field",
	"element1", "element2", "element3", "description",
	"element1_sacrifice_explanation", "element2_sacrifice_explanation", "element3_sacrifice_explanation",
	"hyperlink", "feature_image_url", "element1_image_url", "element2_image_url", "element3_image_url",
	"updated_at",
}

// searchColumns are matched case-insensitively by a listing search.
var searchColumns = []string{"name", "name_en", "field", "element1", "element2", "element3", "description"}

// TrinityQuery is the dao-level listing filter.
type TrinityQuery struct {
	Field  string
	Search string
	Offset int
	Limit  int
}

type TrinityDAO struct {
	db *gorm.DB
}

func NewTrinityDAO(db *gorm.DB) *TrinityDAO {
	return &TrinityDAO{
		db: db,
	}
}

func (d *TrinityDAO) Insert(ctx context.Context, trinity Trinity) (Trinity, error) {
	result := d.db.WithContext(ctx).Omit(clause.Associations).Create(&trinity)
	if result.Error != nil {
		return Trinity{}, result.Error
	}

	return trinity, nil
}

// InsertBatch stores all rows in a single transaction.
func (d *TrinityDAO) InsertBatch(ctx context.Context, trinities []Trinity) error {
	if len(trinities) == 0 {
		return nil
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).CreateInBatches(&trinities, importBatchSize).Error
	})
}

// FindByID loads the entry with its creator and its comments (oldest first)
// together with their authors.
func (d *TrinityDAO) FindByID(ctx context.Context, id uint) (Trinity, error) {
	var trinity Trinity

	result := d.db.WithContext(ctx).
		Preload("Creator").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.User").
		First(&trinity, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Trinity{}, ErrTrinityNotFound
		}

		return Trinity{}, result.Error
	}

	return trinity, nil
}

// List returns entries newest first. Comments are preloaded so callers can
// report comment counts.
func (d *TrinityDAO) List(ctx context.Context, q TrinityQuery) ([]Trinity, error) {
	var trinities []Trinity

	tx := d.db.WithContext(ctx).
		Preload("Creator").
		Preload("Comments").
		Order("created_at DESC, id DESC")

	if q.Field != "" {
		tx = tx.Where("field = ?", q.Field)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		tx = tx.Where(searchCondition(search))
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	if err := tx.Find(&trinities).Error; err != nil {
		return nil, err
	}

	return trinities, nil
}

func (d *TrinityDAO) FindByCreatorID(ctx context.Context, creatorID uint) ([]Trinity, error) {
	var trinities []Trinity

	result := d.db.WithContext(ctx).
		Preload("Comments").
		Where("creator_id = ?", creatorID).
		Order("created_at DESC, id DESC").
		Find(&trinities)
	if result.Error != nil {
		return nil, result.Error
	}

	return trinities, nil
}

// FindAll returns every entry, newest first, with creators and comments.
func (d *TrinityDAO) FindAll(ctx context.Context) ([]Trinity, error) {
	var trinities []Trinity

	result := d.db.WithContext(ctx).
		Preload("Creator").
		Preload("Comments").
		Order("created_at DESC, id DESC").
		Find(&trinities)
	if result.Error != nil {
		return nil, result.Error
	}

	return trinities, nil
}

// FindAllInInsertOrder returns every entry by ascending id without
// associations.
func (d *TrinityDAO) FindAllInInsertOrder(ctx context.Context) ([]Trinity, error) {
	var trinities []Trinity

	if err := d.db.WithContext(ctx).Order("id ASC").Find(&trinities).Error; err != nil {
		return nil, err
	}

	return trinities, nil
}

func (d *TrinityDAO) Update(ctx context.Context, trinity Trinity) (Trinity, error) {
	trinity.UpdatedAt = time.Now()

	result := d.db.WithContext(ctx).
		Model(&Trinity{ID: trinity.ID}).
		Select(editableColumns).
		Updates(&trinity)
	if result.Error != nil {
		return Trinity{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Trinity{}, ErrTrinityNotFound
	}

	return d.FindByID(ctx, trinity.ID)
}

// Delete removes the entry and its comments in one transaction. The
// comments are deleted explicitly so the cascade does not depend on the
// driver enforcing foreign keys.
func (d *TrinityDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trinity_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&Trinity{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTrinityNotFound
		}

		return nil
	})
}

// IncrementAgree bumps the counter with a single UPDATE ... SET
// agree_count = agree_count + 1 and reads the new value back inside the same
// transaction, so concurrent calls never lose an increment.
func (d *TrinityDAO) IncrementAgree(ctx context.Context, id uint) (int, error) {
	var count int

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Trinity{}).
			Where("id = ?", id).
			UpdateColumn("agree_count", gorm.Expr("agree_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTrinityNotFound
		}

		return tx.Model(&Trinity{}).
			Select("agree_count").
			Where("id = ?", id).
			Row().
			Scan(&count)
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (d *TrinityDAO) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Trinity{}).Where("name = ?", name).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// DistinctFields lists every non-empty field in ascending order.
func (d *TrinityDAO) DistinctFields(ctx context.Context) ([]string, error) {
	var fields []string

	result := d.db.WithContext(ctx).
		Model(&Trinity{}).
		Where("field <> ?", "").
		Distinct().
		Order("field ASC").
		Pluck("field", &fields)
	if result.Error != nil {
		return nil, result.Error
	}

	return fields, nil
}

func searchCondition(search string) clause.Expr {
	pattern := "%" + escapeLike(strings.ToLower(search)) + "%"

	parts := make([]string, len(searchColumns))
	vars := make([]interface{}, len(searchColumns))
	for i, col := range searchColumns {
		parts[i] = "LOWER(" + col + ") LIKE ? ESCAPE '\\'"
		vars[i] = pattern
	}

	return gorm.Expr("("+strings.Join(parts, " OR ")+")", vars...)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
