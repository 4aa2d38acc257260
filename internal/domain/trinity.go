package domain

import "time"

// DefaultNameEn is used when an entry is created without an English name.
const DefaultNameEn = "Impossible Trinity"

type Trinity struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	NameEn      string `json:"name_en"`
	Field       string `json:"field"`
	Element1    string `json:"element1"`
	Element2    string `json:"element2"`
	Element3    string `json:"element3"`
	Description string `json:"description"`

	// ElementNSacrifice explains what happens when element N is given up
	// and the other two are kept.
	Element1Sacrifice string `json:"element1_sacrifice_explanation"`
	Element2Sacrifice string `json:"element2_sacrifice_explanation"`
	Element3Sacrifice string `json:"element3_sacrifice_explanation"`

	Hyperlink        string `json:"hyperlink,omitempty"`
	FeatureImageURL  string `json:"feature_image_url,omitempty"`
	Element1ImageURL string `json:"element1_image_url,omitempty"`
	Element2ImageURL string `json:"element2_image_url,omitempty"`
	Element3ImageURL string `json:"element3_image_url,omitempty"`

	AgreeCount int `json:"agree_count"`

	CreatorID uint      `json:"creator_id"`
	Creator   *User     `json:"creator,omitempty"`
	Comments  []Comment `json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t Trinity) CommentsCount() int {
	return len(t.Comments)
}

// TrinityFilter narrows a listing. Empty fields do not filter.
type TrinityFilter struct {
	Field  string
	Search string
}

type TrinityPage struct {
	Items   []Trinity
	Page    int
	PerPage int
	HasNext bool
}

func (p TrinityPage) NextPage() int {
	if !p.HasNext {
		return 0
	}

	return p.Page + 1
}

type ImportReport struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
