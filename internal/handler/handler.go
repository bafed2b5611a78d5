package handler

import (
	"github.com/iscbashan/contact/internal/repository"
)

// Handler serves the operational endpoints.
type Handler struct {
	db repository.DB
}

func New(db repository.DB) *Handler {
	return &Handler{db: db}
}
