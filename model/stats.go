package model

import "time"

type UserStats struct {
	EntryStats struct {
		Total     int            `json:"total"`
		Archived  int            `json:"archived"`
		TagCounts map[string]int `json:"tagCounts"`
	} `json:"entryStats"`
	TagStats struct {
		Total int `json:"total"`
	} `json:"tagStats"`
	ActivityStats struct {
		LastActive     time.Time `json:"lastActive"`
		AccountCreated time.Time `json:"accountCreated"`
		TotalSessions  int       `json:"totalSessions"`
	} `json:"activityStats"`
}
