package person

type Filter struct {
	Limit        *int
	Offset       *int
	Page         *int
	Search       *string
	DepartmentID *int
}

type GetListResponse struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Sex         string `json:"sex"`
	Department  string `json:"department"`
	PersonType  string `json:"person_type"`
	ControlType string `json:"control_type"`
	Photo       string `json:"photo"`
}

type GetDetailByIdResponse struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	Sex           string `json:"sex"`
	DepartmentID  int    `json:"department_id"`
	Department    string `json:"department"`
	PersonTypeID  int    `json:"person_type_id"`
	PersonType    string `json:"person_type"`
	ControlTypeID int    `json:"control_type_id"`
	ControlType   string `json:"control_type"`
	Photo         string `json:"photo"`
}

type CreateRequest struct {
	ID            string `json:"id"              form:"id"`
	FullName      string `json:"full_name"       form:"full_name"`
	Sex           string `json:"sex"             form:"sex"`
	DepartmentID  int    `json:"department_id"   form:"department_id"`
	PersonTypeID  int    `json:"person_type_id"  form:"person_type_id"`
	ControlTypeID int    `json:"control_type_id" form:"control_type_id"`
}

type UpdateRequest struct {
	ID            string `json:"-"`
	FullName      string `json:"full_name"       form:"full_name"`
	Sex           string `json:"sex"             form:"sex"`
	DepartmentID  int    `json:"department_id"   form:"department_id"`
	PersonTypeID  int    `json:"person_type_id"  form:"person_type_id"`
	ControlTypeID int    `json:"control_type_id" form:"control_type_id"`
}

// SearchResult feeds the name lookup of the registration screen.
type SearchResult struct {
	ID         string `json:"id"        bun:"id"`
	FullName   string `json:"full_name" bun:"full_name"`
	Department string `json:"dpto"      bun:"department"`
}
