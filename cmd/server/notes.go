package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/restforge/restforge/internal/resource"
	"github.com/restforge/restforge/internal/schema"
	"github.com/restforge/restforge/internal/security"
	"github.com/restforge/restforge/internal/store"
)

var noteSchema = &schema.Dict{
	Properties: map[string]schema.Type{
		"id":         &schema.UUID{},
		"title":      &schema.String{MinLength: 1, MaxLength: 200},
		"body":       &schema.String{},
		"created_at": &schema.DateTime{},
		"updated_at": &schema.DateTime{},
	},
}

var noteBodySchema = &schema.Dict{
	Properties: map[string]schema.Type{
		"title": &schema.String{MinLength: 1, MaxLength: 200},
		"body":  &schema.String{},
	},
	Required: []string{"title"},
}

// newNotesResource builds the demo notes resource over the in-memory
// store. The purge action requires the admin role.
func newNotesResource(notes *store.NoteStore, admin security.Requirement) (*resource.Resource, error) {
	r := resource.New("notes")

	ops := []*resource.Operation{
		{
			Kind:    resource.KindCreate,
			Body:    noteBodySchema,
			Returns: noteSchema,
			Func: func(ctx context.Context, p resource.Params) (any, error) {
				body := p[resource.BodyKey].(map[string]any)
				title := body["title"].(string)
				text, _ := body["body"].(string)
				note, err := notes.Create(ctx, title, text)
				if err != nil {
					return nil, fmt.Errorf("create note: %w", resource.ErrInternal)
				}
				return encodeNote(note), nil
			},
		},
		{
			Kind: resource.KindRead,
			Params: map[string]resource.Param{
				"id": {Schema: &schema.UUID{}, Required: true},
			},
			Returns: noteSchema,
			Func: func(ctx context.Context, p resource.Params) (any, error) {
				note, err := notes.Get(ctx, p["id"].(uuid.UUID))
				if err != nil {
					return nil, noteError(err)
				}
				return encodeNote(note), nil
			},
		},
		{
			Kind: resource.KindUpdate,
			Params: map[string]resource.Param{
				"id": {Schema: &schema.UUID{}, Required: true},
			},
			Body: noteBodySchema,
			Func: func(ctx context.Context, p resource.Params) (any, error) {
				body := p[resource.BodyKey].(map[string]any)
				title := body["title"].(string)
				text, _ := body["body"].(string)
				if _, err := notes.Update(ctx, p["id"].(uuid.UUID), title, text); err != nil {
					return nil, noteError(err)
				}
				return nil, nil
			},
		},
		{
			Kind: resource.KindDelete,
			Params: map[string]resource.Param{
				"id": {Schema: &schema.UUID{}, Required: true},
			},
			Func: func(ctx context.Context, p resource.Params) (any, error) {
				if err := notes.Delete(ctx, p["id"].(uuid.UUID)); err != nil {
					return nil, noteError(err)
				}
				return nil, nil
			},
		},
		{
			Kind:    resource.KindQuery,
			Name:    "list",
			Returns: &schema.Array{Items: noteSchema},
			Func: func(ctx context.Context, p resource.Params) (any, error) {
				all, err := notes.List(ctx)
				if err != nil {
					return nil, fmt.Errorf("list notes: %w", resource.ErrInternal)
				}
				out := make([]any, len(all))
				for i, note := range all {
					out[i] = encodeNote(note)
				}
				return out, nil
			},
		},
		{
			Kind:     resource.KindAction,
			Name:     "purge",
			Security: []security.Requirement{admin},
			Returns: &schema.Dict{
				Properties: map[string]schema.Type{"purged": &schema.Int{}},
				Required:   []string{"purged"},
			},
			Func: func(ctx context.Context, p resource.Params) (any, error) {
				n, err := notes.Purge(ctx)
				if err != nil {
					return nil, fmt.Errorf("purge notes: %w", resource.ErrInternal)
				}
				return map[string]any{"purged": n}, nil
			},
		},
	}

	for _, op := range ops {
		if err := r.Register(op); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func encodeNote(n store.Note) map[string]any {
	return map[string]any{
		"id":         n.ID,
		"title":      n.Title,
		"body":       n.Body,
		"created_at": n.CreatedAt,
		"updated_at": n.UpdatedAt,
	}
}

func noteError(err error) error {
	if errors.Is(err, store.ErrNoteNotFound) {
		return fmt.Errorf("%v: %w", err, resource.ErrNotFound)
	}
	return fmt.Errorf("%v: %w", err, resource.ErrInternal)
}
