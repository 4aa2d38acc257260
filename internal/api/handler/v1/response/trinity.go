package response

import "github.com/trinitydb/impossible-trinity/internal/domain"

type TrinityItem struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	NameEn            string `json:"name_en"`
	Field             string `json:"field"`
	Element1          string `json:"element1"`
	Element2          string `json:"element2"`
	Element3          string `json:"element3"`
	Description       string `json:"description"`
	AgreeCount        int    `json:"agree_count"`
	CommentsCount     int    `json:"comments_count"`
	Element1Sacrifice string `json:"element1_sacrifice_explanation"`
	Element2Sacrifice string `json:"element2_sacrifice_explanation"`
	Element3Sacrifice string `json:"element3_sacrifice_explanation"`
}

type TrinityListResponse struct {
	Items    []TrinityItem `json:"items"`
	HasMore  bool          `json:"has_more"`
	NextPage *int          `json:"next_page"`
}

type AgreeResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func NewTrinityListResponse(page domain.TrinityPage) TrinityListResponse {
	items := make([]TrinityItem, len(page.Items))
	for i, t := range page.Items {
		items[i] = TrinityItem{
			ID:                t.ID,
			Name:              t.Name,
			NameEn:            t.NameEn,
			Field:             t.Field,
			Element1:          t.Element1,
			Element2:          t.Element2,
			Element3:          t.Element3,
			Description:       t.Description,
			AgreeCount:        t.AgreeCount,
			CommentsCount:     t.CommentsCount(),
			Element1Sacrifice: t.Element1Sacrifice,
			Element2Sacrifice: t.Element2Sacrifice,
			Element3Sacrifice: t.Element3Sacrifice,
		}
	}

	resp := TrinityListResponse{
		Items:   items,
		HasMore: page.HasNext,
	}
	if page.HasNext {
		next := page.NextPage()
		resp.NextPage = &next
	}

	return resp
}
