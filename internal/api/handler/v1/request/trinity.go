package request

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/trinitydb/impossible-trinity/internal/domain"
)

const (
	maxNameLength    = 200
	maxFieldLength   = 100
	maxElementLength = 100
	maxURLLength     = 500
)

var (
	httpURL = regexp.MustCompile(`(?i)^https?://\S+$`)

	// CSV readers drop the \r of a quoted \r\n, so stored text uses \n only.
	newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// TrinityRequest is the add/edit form. It is also built from CSV rows so
// imported entries go through the same rules.
type TrinityRequest struct {
	Name   string  `form:"name"`
	NameEn *string `form:"name_en"`
	Field  string  `form:"field"`

	Element1    string `form:"element1"`
	Element2    string `form:"element2"`
	Element3    string `form:"element3"`
	Description string `form:"description"`

	Element1Sacrifice string `form:"element1_sacrifice_explanation"`
	Element2Sacrifice string `form:"element2_sacrifice_explanation"`
	Element3Sacrifice string `form:"element3_sacrifice_explanation"`

	Hyperlink        string `form:"hyperlink"`
	FeatureImageURL  string `form:"feature_image_url"`
	Element1ImageURL string `form:"element1_image_url"`
	Element2ImageURL string `form:"element2_image_url"`
	Element3ImageURL string `form:"element3_image_url"`
}

// NewTrinityRequestFromValues maps column name -> value. Absent keys stay
// empty, except name_en which then falls back to the default English name.
func NewTrinityRequestFromValues(values map[string]string) TrinityRequest {
	req := TrinityRequest{
		Name:              values["name"],
		Field:             values["field"],
		Element1:          values["element1"],
		Element2:          values["element2"],
		Element3:          values["element3"],
		Description:       values["description"],
		Element1Sacrifice: values["element1_sacrifice_explanation"],
		Element2Sacrifice: values["element2_sacrifice_explanation"],
		Element3Sacrifice: values["element3_sacrifice_explanation"],
		Hyperlink:         values["hyperlink"],
		FeatureImageURL:   values["feature_image_url"],
		Element1ImageURL:  values["element1_image_url"],
		Element2ImageURL:  values["element2_image_url"],
		Element3ImageURL:  values["element3_image_url"],
	}
	if nameEn, ok := values["name_en"]; ok {
		req.NameEn = &nameEn
	}

	return req
}

// NewTrinityRequestFromDomain pre-fills the edit form.
func NewTrinityRequestFromDomain(t domain.Trinity) TrinityRequest {
	nameEn := t.NameEn

	return TrinityRequest{
		Name:              t.Name,
		NameEn:            &nameEn,
		Field:             t.Field,
		Element1:          t.Element1,
		Element2:          t.Element2,
		Element3:          t.Element3,
		Description:       t.Description,
		Element1Sacrifice: t.Element1Sacrifice,
		Element2Sacrifice: t.Element2Sacrifice,
		Element3Sacrifice: t.Element3Sacrifice,
		Hyperlink:         t.Hyperlink,
		FeatureImageURL:   t.FeatureImageURL,
		Element1ImageURL:  t.Element1ImageURL,
		Element2ImageURL:  t.Element2ImageURL,
		Element3ImageURL:  t.Element3ImageURL,
	}
}

func (req *TrinityRequest) Validate() error {
	req.trim()

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, maxNameLength)),
		validation.Field(&req.NameEn, validation.RuneLength(0, maxNameLength)),
		validation.Field(&req.Field, validation.RuneLength(0, maxFieldLength)),
		validation.Field(&req.Element1, validation.Required, validation.RuneLength(1, maxElementLength)),
		validation.Field(&req.Element2, validation.Required, validation.RuneLength(1, maxElementLength)),
		validation.Field(&req.Element3, validation.Required, validation.RuneLength(1, maxElementLength)),
		validation.Field(&req.Hyperlink, urlRules()...),
		validation.Field(&req.FeatureImageURL, urlRules()...),
		validation.Field(&req.Element1ImageURL, urlRules()...),
		validation.Field(&req.Element2ImageURL, urlRules()...),
		validation.Field(&req.Element3ImageURL, urlRules()...),
	)
}

func (req *TrinityRequest) ToDomain() domain.Trinity {
	nameEn := domain.DefaultNameEn
	if req.NameEn != nil {
		nameEn = *req.NameEn
	}

	return domain.Trinity{
		Name:              req.Name,
		NameEn:            nameEn,
		Field:             req.Field,
		Element1:          req.Element1,
		Element2:          req.Element2,
		Element3:          req.Element3,
		Description:       req.Description,
		Element1Sacrifice: req.Element1Sacrifice,
		Element2Sacrifice: req.Element2Sacrifice,
		Element3Sacrifice: req.Element3Sacrifice,
		Hyperlink:         req.Hyperlink,
		FeatureImageURL:   req.FeatureImageURL,
		Element1ImageURL:  req.Element1ImageURL,
		Element2ImageURL:  req.Element2ImageURL,
		Element3ImageURL:  req.Element3ImageURL,
	}
}

func (req *TrinityRequest) trim() {
	for _, s := range []*string{
		&req.Name, &req.Field, &req.Element1, &req.Element2, &req.Element3,
		&req.Hyperlink, &req.FeatureImageURL, &req.Element1ImageURL, &req.Element2ImageURL, &req.Element3ImageURL,
	} {
		*s = strings.TrimSpace(newlines.Replace(*s))
	}
	for _, s := range []*string{
		&req.Description, &req.Element1Sacrifice, &req.Element2Sacrifice, &req.Element3Sacrifice,
	} {
		*s = newlines.Replace(*s)
	}
	if req.NameEn != nil {
		nameEn := strings.TrimSpace(newlines.Replace(*req.NameEn))
		req.NameEn = &nameEn
	}
}

func urlRules() []validation.Rule {
	return []validation.Rule{
		validation.RuneLength(0, maxURLLength),
		validation.Match(httpURL).Error("must be an http or https URL"),
	}
}

type CommentRequest struct {
	Content string `form:"content"`
}
