package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/scrollviz/internal/dataset"
)

// fetchDoneMsg carries a finished fetch back into Update, where its
// completion runs on the program goroutine.
type fetchDoneMsg struct {
	table    *dataset.Table
	err      error
	complete func(*dataset.Table, error)
}

// cmdScheduler turns loader fetches into tea.Cmds. Bubble Tea runs each Cmd
// on its own goroutine and delivers the result as a message.
type cmdScheduler struct {
	cmds []tea.Cmd
}

// Schedule queues fetch as a Cmd. Drain must be called to hand the queued
// Cmds to the program.
func (s *cmdScheduler) Schedule(fetch func() (*dataset.Table, error), complete func(*dataset.Table, error)) {
	s.cmds = append(s.cmds, func() tea.Msg {
		table, err := fetch()
		return fetchDoneMsg{table: table, err: err, complete: complete}
	})
}

// drain returns every queued Cmd as one batch, or nil.
func (s *cmdScheduler) drain() tea.Cmd {
	cmds := s.cmds
	s.cmds = nil
	return tea.Batch(cmds...)
}
