package dto

import "agentmarket/internal/pkg/request"

type SearchQueryDto struct {
	Query string `form:"query"`
	Limit int    `form:"limit" binding:"omitempty,min=1"`
}

func (SearchQueryDto) GetMessages() request.ValidatorMessages {
	return request.ValidatorMessages{"Limit.min": "limit must be a positive integer"}
}

type SearchResultDto struct {
	Score   float64             `json:"score"`
	Listing *ListingResponseDto `json:"listing"`
}

type SearchResponseDto struct {
	Query   string             `json:"query"`
	Results []*SearchResultDto `json:"results"`
}
