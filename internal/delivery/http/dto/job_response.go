package dto

// JobResponse is the wire shape of a single job posting. Salary is the
// display string derived from the numeric bounds; the bounds themselves are
// included so clients can filter without parsing the string back.
type JobResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Salary      string   `json:"salary"`
	SalaryMin   *float64 `json:"salary_min"`
	SalaryMax   *float64 `json:"salary_max"`
	ApplyLink   string   `json:"apply_link"`
	Description string   `json:"description,omitempty"`
	Remote      bool     `json:"remote"`
	PostedAt    string   `json:"posted_at"`
}
