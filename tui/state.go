package tui

type state int

const (
	readState state = iota
	chaptersState
)
