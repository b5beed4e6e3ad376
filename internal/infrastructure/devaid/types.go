package devaid

import (
	"TenderScanner/internal/config"
	"TenderScanner/internal/domain"
)

type searchRequest struct {
	Sort   string       `json:"sort"`
	Page   int          `json:"page"`
	Size   int          `json:"size"`
	Filter searchFilter `json:"filter"`
}

type searchFilter struct {
	Keyword           keywordFilter `json:"keyword"`
	Locations         []int         `json:"locations"`
	Sectors           []int         `json:"sectors"`
	PostedFrom        string        `json:"postedFrom"`
	PostedTill        string        `json:"postedTill"`
	Statuses          []int         `json:"statuses"`
	TenderTypes       []int         `json:"tenderTypes"`
	EligibilityAlias  string        `json:"eligibilityAlias,omitempty"`
	BudgetInEuroRange budgetRange   `json:"budgetInEuroRange"`
}

type keywordFilter struct {
	SearchedText   string   `json:"searchedText"`
	SearchedFields []string `json:"searchedFields"`
}

type budgetRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type searchResponse struct {
	Items []searchItem `json:"items"`
	Total int          `json:"total"`
}

type searchItem struct {
	ID domain.ID `json:"id"`
}

func buildSearchRequest(cfg config.SearchConfig, window domain.FetchWindow) searchRequest {
	return searchRequest{
		Sort: cfg.Sort,
		Page: 1,
		Size: cfg.PageSize,
		Filter: searchFilter{
			Keyword: keywordFilter{
				SearchedText:   cfg.Keyword,
				SearchedFields: cfg.SearchedFields,
			},
			Locations:        cfg.CountryIDs(),
			Sectors:          cfg.SectorIDs(),
			PostedFrom:       window.From(),
			PostedTill:       window.Till(),
			Statuses:         cfg.Statuses,
			TenderTypes:      cfg.TenderTypes,
			EligibilityAlias: cfg.EligibilityAlias,
			BudgetInEuroRange: budgetRange{
				Min: cfg.BudgetMinEUR,
				Max: cfg.BudgetMaxEUR,
			},
		},
	}
}
