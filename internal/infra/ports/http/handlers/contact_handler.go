package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dkazarin/molva/internal/application/constant"
	"github.com/dkazarin/molva/internal/infra/appctx"
	"github.com/dkazarin/molva/internal/infra/ports/http/dto"
	"github.com/dkazarin/molva/internal/usecase"
)

type ContactHandler struct {
	contactUsecase usecase.ContactUsecase
}

func NewContactHandler(contactUsecase usecase.ContactUsecase) *ContactHandler {
	return &ContactHandler{contactUsecase: contactUsecase}
}

func (h *ContactHandler) AddContact(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	var req dto.AddContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.ContactID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "contact_id is required"})
	}

	err := h.contactUsecase.AddContact(c.Request().Context(), userID, req.ContactID)
	switch {
	case errors.Is(err, usecase.ErrSelfContact):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "cannot add yourself as a contact"})
	case errors.Is(err, usecase.ErrContactExists):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "contact already exists"})
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	case err != nil:
		slog.Error("add contact failed", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not add contact"})
	}

	return c.JSON(http.StatusCreated, map[string]string{"message": "contact added"})
}

func (h *ContactHandler) ListContacts(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	contacts, err := h.contactUsecase.ListContacts(c.Request().Context(), userID)
	if err != nil {
		slog.Error("list contacts failed", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not list contacts"})
	}

	return c.JSON(http.StatusOK, contacts)
}
