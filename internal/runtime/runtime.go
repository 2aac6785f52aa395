// runtime/runtime.go

package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"rgehrsitz/pilc/internal/draft"
	"rgehrsitz/pilc/internal/preprocessor"
	"rgehrsitz/pilc/internal/registry"
	"rgehrsitz/pilc/internal/resolver"
	"rgehrsitz/pilc/internal/rules"
)

// Backend is the part of the controller backend the Controller talks to.
type Backend interface {
	FetchComponentForms(ctx context.Context) ([]byte, error)
	FetchEventForms(ctx context.Context) ([]byte, error)
	PutComponents(ctx context.Context, body interface{}) error
	PutEvents(ctx context.Context, id string, body interface{}) error
}

// SubmitStatus is the outcome of the last submission of a page.
type SubmitStatus struct {
	Page    string    `json:"page"`
	Failed  bool      `json:"failed"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// State is one immutable snapshot of the application. Never modify a State
// obtained from the Controller.
type State struct {
	Catalog        *rules.Catalog
	Registry       registry.Registry
	Draft          draft.Store
	ComponentForms []preprocessor.Form
	EventForms     []preprocessor.Form

	// Inline messages per page, set when validation blocks a submission.
	ComponentMessage  string
	ComponentProblems []preprocessor.FieldProblem
	EventMessage      string
	EventProblems     []preprocessor.FieldProblem

	Submit *SubmitStatus
}

// ControllerError reports an action that could not be applied. The state is
// left unchanged.
type ControllerError struct {
	Op  Opcode
	Err error
}

func (e *ControllerError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ControllerError) Unwrap() error {
	return e.Err
}

// Controller owns the application state. Dispatch is serialized; readers get
// whole snapshots through Snapshot and never see a half-applied edit.
type Controller struct {
	mu       sync.Mutex
	state    atomic.Pointer[State]
	backend  Backend
	eventsID string
	now      func() time.Time
}

func NewController(catalog *rules.Catalog, backend Backend, eventsID string) *Controller {
	c := &Controller{backend: backend, eventsID: eventsID, now: time.Now}
	c.state.Store(&State{Catalog: catalog})
	return c
}

func (c *Controller) Snapshot() *State {
	return c.state.Load()
}

// Dispatch applies a to the current state and publishes the result.
func (c *Controller) Dispatch(a Action) (*State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.state.Load()
	next, err := reduce(current, a)
	if err != nil {
		log.Debug().Str("op", a.Op.String()).Err(err).Msg("Action rejected")
		return current, &ControllerError{Op: a.Op, Err: err}
	}
	c.state.Store(next)
	log.Debug().Str("op", a.Op.String()).Int("components", next.Registry.Len()).Int("events", next.Draft.Len()).Msg("Action applied")
	return next, nil
}

// update publishes fn(current) under the dispatch lock.
func (c *Controller) update(fn func(s State) State) *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := fn(*c.state.Load())
	c.state.Store(&next)
	return &next
}

// reduce is the pure transition function behind Dispatch.
func reduce(current *State, a Action) (*State, error) {
	next := *current
	var err error

	switch a.Op {
	case ADD_EVENT:
		next.Draft, err = current.Draft.AddEvent(strings.TrimSpace(a.Event))

	case REMOVE_EVENT:
		next.Draft, err = current.Draft.RemoveEvent(a.Index)

	case ADD_ROW:
		next.Draft, _, err = current.Draft.AddRow(a.Event, a.Section)

	case REMOVE_ROW:
		next.Draft, err = current.Draft.RemoveRow(a.Event, a.Section, a.Index)

	case SET_FIELD:
		next.Draft, err = current.Draft.SetField(a.Key, a.Value)

	case UPSERT_COMPONENT:
		label := strings.TrimSpace(a.Label)
		next.Registry, err = current.Registry.Upsert(label, a.Category, a.Value)
		if err == nil {
			if prev, ok := current.Registry.Resolve(label); ok && prev != a.Category {
				next.Draft = current.Draft.ClearDependents(label)
			}
		}

	case REMOVE_COMPONENT:
		next.Registry = current.Registry.Remove(a.Label)
		warnDangling(current.Draft, a.Label)

	case REMOVE_COMPONENT_AT:
		var removed registry.Component
		next.Registry, removed, err = current.Registry.RemoveAt(a.Index)
		if err == nil {
			warnDangling(current.Draft, removed.Label)
		}

	case RENAME_COMPONENT:
		next.Registry, err = current.Registry.Rename(a.Label, a.NewLabel)
		if err == nil {
			next.Draft = current.Draft.RenameSubject(a.Label, strings.TrimSpace(a.NewLabel))
		}

	case SET_COMPONENTS:
		var reg registry.Registry
		reg, err = preprocessor.BuildRegistry(a.Components)
		var formErr *preprocessor.IncompleteFormError
		if errors.As(err, &formErr) {
			// The page stays as typed; only the message changes.
			next.ComponentMessage = formErr.Message()
			next.ComponentProblems = formErr.Problems
			return &next, nil
		}
		if err == nil {
			next.Registry = reg
			next.Draft = cascadeCategoryChanges(current.Registry, reg, current.Draft)
			next.ComponentMessage, next.ComponentProblems = "", nil
		}

	case LOAD_DEFINITIONS:
		if a.Definitions == nil {
			err = fmt.Errorf("no definitions")
			break
		}
		next.Registry = a.Definitions.Registry
		next.Draft = a.Definitions.Draft
		next.ComponentMessage, next.ComponentProblems = "", nil
		next.EventMessage, next.EventProblems = "", nil

	case CLEAR_MESSAGES:
		next.ComponentMessage, next.ComponentProblems = "", nil
		next.EventMessage, next.EventProblems = "", nil
		next.Submit = nil

	default:
		err = fmt.Errorf("unknown opcode %s", a.Op)
	}

	if err != nil {
		return nil, err
	}
	return &next, nil
}

// warnDangling logs the rows left without a subject when the component with
// label is removed. The rows stay in the draft until the user edits them.
func warnDangling(store draft.Store, label string) {
	refs := store.References(label)
	if len(refs) == 0 {
		return
	}
	log.Warn().Str("component", label).Int("rows", len(refs)).Str("first", refs[0].String()).
		Msg("Removed component is still referenced")
}

// cascadeCategoryChanges clears predicate and value of rows whose subject
// kept its label but changed category.
func cascadeCategoryChanges(before, after registry.Registry, store draft.Store) draft.Store {
	for _, c := range after.Components() {
		if prev, ok := before.Resolve(c.Label); ok && prev != c.Category {
			store = store.ClearDependents(c.Label)
		}
	}
	return store
}

// ResolveRow resolves the row addressed by key against the current snapshot.
func (c *Controller) ResolveRow(key draft.RowKey) (resolver.ResolvedRow, error) {
	s := c.Snapshot()
	row, err := s.Draft.Row(key)
	if err != nil {
		return resolver.ResolvedRow{}, err
	}
	return resolver.Resolve(row, key.Section, s.Registry, s.Catalog), nil
}

// ResolveEvent resolves every row of the event with label.
func (c *Controller) ResolveEvent(label string) (resolver.ResolvedEvent, error) {
	s := c.Snapshot()
	ev, ok := s.Draft.Event(label)
	if !ok {
		return resolver.ResolvedEvent{}, fmt.Errorf("%w: %q", draft.ErrUnknownEvent, label)
	}
	return resolver.ResolveEvent(ev, s.Registry, s.Catalog), nil
}

// LoadForms fetches and parses both pages' form descriptors.
func (c *Controller) LoadForms(ctx context.Context) error {
	log.Info().Msg("Started loading form descriptors...")
	componentData, err := c.backend.FetchComponentForms(ctx)
	if err != nil {
		return fmt.Errorf("fetching component forms: %w", err)
	}
	componentForms, err := preprocessor.ParseForms(componentData)
	if err != nil {
		return fmt.Errorf("component forms: %w", err)
	}
	eventData, err := c.backend.FetchEventForms(ctx)
	if err != nil {
		return fmt.Errorf("fetching event forms: %w", err)
	}
	eventForms, err := preprocessor.ParseForms(eventData)
	if err != nil {
		return fmt.Errorf("event forms: %w", err)
	}

	for _, form := range componentForms {
		for _, section := range form.Sections {
			if _, err := section.Category(); err != nil {
				log.Warn().Str("section", section.Name).Msg("Component form section has no matching category")
			}
		}
	}

	c.update(func(s State) State {
		s.ComponentForms = componentForms
		s.EventForms = eventForms
		return s
	})
	log.Info().Int("componentForms", len(componentForms)).Int("eventForms", len(eventForms)).Msg("Loaded form descriptors")
	return nil
}

// SubmitComponents sends the registry to the backend.
// An incomplete registry is not sent; the components page message is set
// instead.
func (c *Controller) SubmitComponents(ctx context.Context) error {
	s := c.Snapshot()
	if err := preprocessor.ValidateComponents(s.Registry); err != nil {
		c.recordFormError(err)
		return err
	}
	c.update(func(s State) State {
		s.ComponentMessage, s.ComponentProblems = "", nil
		return s
	})
	body := preprocessor.SerializeComponents(s.Registry)
	err := c.backend.PutComponents(ctx, body)
	c.recordSubmit(preprocessor.PageComponents, err)
	return err
}

// SubmitEvents validates the draft and sends the full definitions document.
// An incomplete draft is not sent; the events page message is set instead.
func (c *Controller) SubmitEvents(ctx context.Context) error {
	s := c.Snapshot()
	doc, err := preprocessor.SerializeEvents(s.Draft, s.Registry, s.Catalog)
	if err != nil {
		c.recordFormError(err)
		return err
	}

	c.update(func(s State) State {
		s.EventMessage, s.EventProblems = "", nil
		return s
	})
	err = c.backend.PutEvents(ctx, c.eventsID, doc)
	c.recordSubmit(preprocessor.PageEvents, err)
	return err
}

// recordFormError shows an *IncompleteFormError on the page it belongs to.
func (c *Controller) recordFormError(err error) {
	var formErr *preprocessor.IncompleteFormError
	if !errors.As(err, &formErr) {
		return
	}
	log.Info().Str("page", formErr.Page).Int("problems", len(formErr.Problems)).Msg("Submission blocked by incomplete form")
	c.update(func(s State) State {
		if formErr.Page == preprocessor.PageComponents {
			s.ComponentMessage = formErr.Message()
			s.ComponentProblems = formErr.Problems
		} else {
			s.EventMessage = formErr.Message()
			s.EventProblems = formErr.Problems
		}
		return s
	})
}

func (c *Controller) recordSubmit(page string, err error) {
	status := &SubmitStatus{Page: page, At: c.now(), Message: "Saved."}
	if err != nil {
		log.Error().Err(err).Str("page", page).Msg("Submission failed")
		status.Failed = true
		status.Message = fmt.Sprintf("Could not save %s: %v", page, err)
	}
	c.update(func(s State) State {
		s.Submit = status
		return s
	})
}
