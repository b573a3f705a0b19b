package data

import "encoding/json"

type Employee struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (e *Employee) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Employee) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

// EmployeeList is the cached form of the full employee list, it only holds
// the ids, the employees themselves are cached individually
type EmployeeList struct {
	IDs []int64 `json:"ids"`
}

func (e *EmployeeList) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *EmployeeList) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}
