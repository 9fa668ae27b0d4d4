package dto

type FetchJobsResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Jobs    []JobResponse `json:"jobs"`
	Total   int           `json:"total"`
	Pages   int           `json:"pages"`
}

type CreateJobRequest struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Salary      string   `json:"salary"`
	SalaryMin   *float64 `json:"salary_min"`
	SalaryMax   *float64 `json:"salary_max"`
	ApplyLink   string   `json:"apply_link"`
	Description string   `json:"description"`
	PostedAt    string   `json:"posted_at"`
}

type CreateJobResponse struct {
	Success bool        `json:"success"`
	Job     JobResponse `json:"job"`
}
