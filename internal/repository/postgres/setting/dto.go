package setting

type UpdateRequest struct {
	PrintTickets *bool   `json:"print_tickets" form:"print_tickets"`
	SchoolName   *string `json:"school_name"   form:"school_name"`
}

type GetInfoResponse struct {
	PrintTickets bool   `json:"print_tickets"`
	SchoolName   string `json:"school_name"`
	Logo         string `json:"logo"`
}
