package model

// Mode controls who may submit change requests and see a project.
type Mode int

const (
	ModeOpen Mode = iota
	ModeProtected
	ModePrivate
)
