package tasks

import "errors"

// ErrNotFound is returned when no task carries the requested id.
var ErrNotFound = errors.New("task not found")

type Task struct {
	ID     int    `json:"id"`
	Titulo string `json:"titulo"`
	Hecho  bool   `json:"hecho"`
}

// CreateInput is a validated POST /tareas payload.
type CreateInput struct {
	Titulo string `json:"titulo"`
	Hecho  bool   `json:"hecho"`
}

// PatchInput is a validated PATCH /tareas/{id} payload. Nil fields were not
// supplied and must be left untouched.
type PatchInput struct {
	Titulo *string `json:"titulo"`
	Hecho  *bool   `json:"hecho"`
}

// SeedNextID is the first id handed out after the seed records.
const SeedNextID = 3

// SeedTasks returns the records present at startup.
func SeedTasks() []Task {
	return []Task{
		{ID: 1, Titulo: "Primera", Hecho: false},
		{ID: 2, Titulo: "Segunda", Hecho: true},
	}
}
