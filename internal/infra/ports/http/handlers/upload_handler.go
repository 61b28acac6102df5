package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dkazarin/molva/internal/application/constant"
	"github.com/dkazarin/molva/internal/infra/appctx"
	"github.com/dkazarin/molva/internal/infra/ports/http/dto"
	"github.com/dkazarin/molva/internal/infra/storage"
)

type UploadHandler struct {
	files *storage.FileStore
}

func NewUploadHandler(files *storage.FileStore) *UploadHandler {
	return &UploadHandler{files: files}
}

// UploadAudio принимает голосовое сообщение. Клиент кладёт вернувшийся
// file_path в content события send_message с is_audio=true.
func (h *UploadHandler) UploadAudio(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no file to upload"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not read file"})
	}
	defer src.Close()

	filename := fmt.Sprintf("%s_%d.wav", userID, time.Now().Unix())

	publicPath, err := h.files.Save(filename, src)
	if err != nil {
		slog.Error("save audio upload", slog.Any(constant.Error, err), slog.Any(constant.UserID, userID))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not save file"})
	}

	return c.JSON(http.StatusCreated, dto.UploadResponse{FilePath: publicPath})
}
