package tui

type (
	frameMsg  struct{}
	statusMsg string
	errMsg    struct{ error }
)
