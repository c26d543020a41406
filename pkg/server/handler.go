/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2023-2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"io"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/i18n"
	"github.com/dburkart/jql/pkg/proto"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/validate"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var ErrBadRequest = errors.New("bad request")

// Handler answers protocol requests. It is shared by the TCP server and by
// clients running in-process.
type Handler struct {
	log        zerolog.Logger
	registry   *validate.Registry
	validator  *validate.QueryValidator
	translator *i18n.Translator
	version    string
}

func NewHandler(log zerolog.Logger, registry *validate.Registry, translator *i18n.Translator, version string, opts ...validate.ValidatorOption) *Handler {
	return &Handler{
		log:        log,
		registry:   registry,
		validator:  validate.NewQueryValidator(registry, log, opts...),
		translator: translator,
		version:    version,
	}
}

// Mux returns a mux serving every command.
func (h *Handler) Mux(middleware ...Middleware) MessageMux {
	mux := NewMapMux(middleware...)
	mux.Handle(proto.CommandVersion, handle(h.VersionResponse))
	mux.Handle(proto.CommandValidate, handle(h.ValidateResponse))
	mux.Handle(proto.CommandFields, handle(h.FieldsResponse))
	mux.Handle(proto.CommandFunctions, handle(h.FunctionsResponse))
	return mux
}

func handle[T any, PT interface {
	*T
	proto.Unmarshaler
}](f func(context.Context, T) proto.Message) HandleMessage {
	return func(ctx context.Context, w io.Writer, msg proto.Message) {
		rw := proto.NewResponseWriter(w)

		var req T
		if err := msg.Unmarshal(PT(&req)); err != nil {
			rw.WriteMessage(ErrorMessage(errors.Wrap(ErrBadRequest, err.Error())))
			return
		}
		rw.WriteMessage(f(ctx, req))
	}
}

// ErrorMessage maps err to an ERROR message with a status code.
func ErrorMessage(err error) proto.Message {
	code := uint32(500)
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, clause.ErrInvalidDocument):
		code = 400
	case errors.Is(err, catalog.ErrNotFound):
		code = 404
	}
	return proto.NewMessageWithType(proto.CommandError, proto.ErrResponse{Code: code, Message: err.Error()})
}

func (h *Handler) VersionResponse(_ context.Context, req proto.VersionRequest) proto.Message {
	// Every client version is accepted for now.
	h.log.Debug().Str("client_version", req.Version).Msg("version announcement")
	return proto.NewMessageWithType(proto.CommandVersion, proto.VersionResponse{Code: 200, Version: h.version})
}

func (h *Handler) lookupUser(ctx context.Context, name string) (*catalog.User, error) {
	if name == "" {
		return nil, nil
	}
	return h.registry.Services().Catalog.User(ctx, name)
}

func (h *Handler) ValidateResponse(ctx context.Context, req proto.ValidateRequest) proto.Message {
	requestID := uuid.NewString()
	log := h.log.With().Str("request_id", requestID).Logger()

	q, err := clause.ParseDocument([]byte(req.Document))
	if err != nil {
		log.Debug().Err(err).Msg("rejected query document")
		return ErrorMessage(err)
	}
	user, err := h.lookupUser(ctx, req.User)
	if err != nil {
		log.Debug().Err(err).Str("user", req.User).Msg("unknown user")
		return ErrorMessage(err)
	}

	set := h.validator.Validate(ctx, user, q, validate.Options{FilterID: req.FilterID})
	rendered := set.Render(h.translator.Localizer(req.Locale))

	resp := proto.ValidateResponse{
		RequestID:   requestID,
		Query:       q.String(),
		Valid:       !set.HasAnyErrors(),
		Errors:      rendered.Errors,
		Warnings:    rendered.Warnings,
		ErrorKeys:   set.Errors(),
		WarningKeys: set.Warnings(),
		Reasons:     set.Reasons(),
	}
	log.Debug().Bool("valid", resp.Valid).Msg("validated query")

	return proto.NewMessageWithType(proto.CommandValidate, resp)
}

func (h *Handler) FieldsResponse(ctx context.Context, req proto.FieldsRequest) proto.Message {
	user, err := h.lookupUser(ctx, req.User)
	if err != nil {
		return ErrorMessage(err)
	}
	fields, err := h.registry.Fields(ctx, user)
	if err != nil {
		h.log.Error().Err(err).Msg("unable to list fields")
		return ErrorMessage(err)
	}

	resp := proto.FieldsResponse{Fields: make([]proto.FieldInfo, 0, len(fields))}
	for _, f := range fields {
		operators := make([]string, 0, len(f.Operators))
		for _, op := range f.Operators {
			operators = append(operators, op.String())
		}
		resp.Fields = append(resp.Fields, proto.FieldInfo{
			ID:        f.ID,
			Names:     f.Names,
			Type:      f.DataType.String(),
			Operators: operators,
			Orderable: f.Orderable,
			History:   f.History,
		})
	}
	return proto.NewMessageWithType(proto.CommandFields, resp)
}

func (h *Handler) FunctionsResponse(_ context.Context, _ proto.FunctionsRequest) proto.Message {
	functions := h.registry.Functions().All()
	resp := proto.FunctionsResponse{Functions: make([]proto.FunctionInfo, 0, len(functions))}
	for _, f := range functions {
		resp.Functions = append(resp.Functions, proto.FunctionInfo{
			Name:      f.Name,
			Type:      f.DataType.String(),
			List:      f.List,
			Arguments: f.Signature(),
		})
	}
	return proto.NewMessageWithType(proto.CommandFunctions, resp)
}
