package model

import (
	"time"
)

// Entry is one day's reflection for a user.
type Entry struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id"`
	WhatMattersMost   string    `db:"what_matters_most" json:"what_matters_most"`
	FearsOfLoss       string    `db:"fears_of_loss" json:"fears_of_loss"`
	PersonalGoals     string    `db:"personal_goals" json:"personal_goals"`
	GeneratedSentence string    `db:"generated_sentence" json:"generated_sentence"`
	GenerateDuration  int64     `db:"generate_duration" json:"generate_duration"` // milliseconds
	EntryDate         string    `db:"entry_date" json:"-"`                        // UTC YYYY-MM-DD of CreatedAt
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// EntryDateLayout is the layout of Entry.EntryDate.
const EntryDateLayout = "2006-01-02"

// EntryDateOf returns the UTC calendar date key for t.
func EntryDateOf(t time.Time) string {
	return t.UTC().Format(EntryDateLayout)
}

type PaginationMetadata struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasNext     bool `json:"has_next"`
}

// NewPaginationMetadata computes page counts; an empty result still has one page.
func NewPaginationMetadata(page, limit, total int) PaginationMetadata {
	totalPages := 1
	if limit > 0 && total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PaginationMetadata{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     page < totalPages,
	}
}

type EntryList struct {
	Data       []*Entry           `json:"data"`
	Pagination PaginationMetadata `json:"pagination"`
}

// EntryExport is the document produced by GET /entries/export.
type EntryExport struct {
	UserID     string    `json:"user_id"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Entries    []*Entry  `json:"entries"`
}
