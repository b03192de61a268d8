package admin

// CountBucket is one row of a grouped count.
type CountBucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// SystemStats is the admin dashboard overview.
type SystemStats struct {
	Users         int `json:"users"`
	Wounds        int `json:"wounds"`
	WoundLogs     int `json:"wound_logs"`
	Clinics       int `json:"clinics"`
	ForumPosts    int `json:"forum_posts"`
	ForumComments int `json:"forum_comments"`
	Reminders     int `json:"reminders"`
	Escalations   struct {
		Total   int `json:"total"`
		Pending int `json:"pending"`
	} `json:"escalations"`
	FlaggedContent struct {
		Posts    int `json:"posts"`
		Comments int `json:"comments"`
	} `json:"flagged_content"`
}

// WoundStats groups wound counts along the reporting axes.
type WoundStats struct {
	TotalWounds int           `json:"total_wounds"`
	ByType      []CountBucket `json:"by_type"`
	BySeverity  []CountBucket `json:"by_severity"`
	ByStatus    []CountBucket `json:"by_status"`
}

// ClinicStats groups clinic counts by location.
type ClinicStats struct {
	TotalClinics int           `json:"total_clinics"`
	ByCountry    []CountBucket `json:"by_country"`
	ByCity       []CountBucket `json:"by_city"`
}
