package wire

// EmployeePayload carries one employee.
type EmployeePayload struct {
	Employee EmployeeDTO `json:"employee"`
}

// EmployeeListPayload carries the active employee list.
type EmployeeListPayload struct {
	Count     int           `json:"count"`
	Employees []EmployeeDTO `json:"employees"`
}

// BalancePayload carries a balance snapshot. EmployeeID is omitted by the
// MCP tools, which act on the session's employee.
type BalancePayload struct {
	EmployeeID string             `json:"employee_id,omitempty"`
	Balances   map[string]float64 `json:"balances"`
}

// ApplyPayload is returned by a successful leave application.
type ApplyPayload struct {
	Request  RequestDTO         `json:"request"`
	Balances map[string]float64 `json:"balances"`
}

// CreditPayload is returned by a manual credit.
type CreditPayload struct {
	Adjustment AdjustmentDTO      `json:"adjustment"`
	Balances   map[string]float64 `json:"balances"`
}

// RequestListPayload carries an employee's requests, newest first.
type RequestListPayload struct {
	EmployeeID string       `json:"employee_id,omitempty"`
	Count      int          `json:"count"`
	Requests   []RequestDTO `json:"requests"`
}

// MessagePayload carries a confirmation message.
type MessagePayload struct {
	Message string `json:"message"`
}

// LoginPayload is returned by the MCP login tool.
type LoginPayload struct {
	Token      string `json:"token"`
	EmployeeID string `json:"employee_id"`
	IsAdmin    bool   `json:"is_admin"`
	Name       string `json:"name"`
}
