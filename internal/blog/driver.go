// ABOUTME: Synchronous driver for the post lifecycle controller.
// ABOUTME: Runs tasks concurrently and applies their events on the caller's goroutine.
package blog

import (
	"context"
)

// Driver runs a Controller for callers without their own event loop, such as
// CLI commands and MCP tool handlers.
type Driver struct {
	c       *Controller
	confirm Confirmer
}

// NewDriver wraps c. confirm answers the save and delete prompts.
func NewDriver(c *Controller, confirm Confirmer) *Driver {
	return &Driver{c: c, confirm: confirm}
}

// Controller returns the wrapped controller.
func (d *Driver) Controller() *Controller {
	return d.c
}

// Open loads route and returns once every load has resolved.
func (d *Driver) Open(ctx context.Context, route Route) State {
	d.Run(ctx, d.c.Open(route))
	return d.c.State()
}

// Run starts every task in its own goroutine and applies the events in the
// order they arrive.
func (d *Driver) Run(ctx context.Context, tasks []Task) {
	if len(tasks) == 0 {
		return
	}
	events := make(chan Event, len(tasks))
	for _, task := range tasks {
		go func(task Task) {
			events <- task(ctx)
		}(task)
	}
	for range tasks {
		d.c.Handle(<-events)
	}
}

// Save asks for confirmation and then creates or updates the post in view.
// It returns ErrDeclined when the user says no, or the save failure.
func (d *Driver) Save(ctx context.Context, title, content string) error {
	if err := d.c.SetDraft(title, content); err != nil {
		return err
	}
	if err := d.c.RequestSave(); err != nil {
		return err
	}
	if !d.confirm.Confirm(ctx, SavePrompt) {
		d.c.ResolveSave(false)
		return ErrDeclined
	}
	d.Run(ctx, d.c.ResolveSave(true))
	return d.c.Err()
}

// Delete asks for confirmation and then deletes the post in view.
func (d *Driver) Delete(ctx context.Context) error {
	if err := d.c.RequestDelete(); err != nil {
		return err
	}
	if !d.confirm.Confirm(ctx, DeletePrompt) {
		d.c.ResolveDelete(false)
		return ErrDeclined
	}
	d.Run(ctx, d.c.ResolveDelete(true))
	return d.c.Err()
}
