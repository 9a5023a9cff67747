package videos

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/princekumarofficial/videos-service/internal/events"
	"github.com/princekumarofficial/videos-service/internal/storage"
	"github.com/princekumarofficial/videos-service/internal/utils/response"
)

var errInvalidID = errors.New("video not found")

// writeDecodeError answers a bad form or a failed validation with 400
func writeDecodeError(w http.ResponseWriter, err error) {
	if ve, ok := isValidationError(err); ok {
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
		return
	}
	response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
}

func writeStorageError(w http.ResponseWriter, op string, id int64, err error) {
	slog.Error("Storage failure",
		slog.String("op", op),
		slog.Int64("video_id", id),
		slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("internal server error")))
}

// Get returns a single video
// @Summary Get a video
// @Tags videos
// @Produce json
// @Param id path int true "Video ID"
// @Success 200 {object} types.Video
// @Failure 404 {object} response.Response "Video does not exist"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /video/{id} [get]
func Get(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r)
		if !ok {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errInvalidID))
			return
		}

		video, err := store.GetVideo(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrVideoNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(
					fmt.Errorf("video with id %d does not exist", id)))
				return
			}
			writeStorageError(w, "get", id, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, video)
	}
}

// Put creates a video under a caller-chosen id
// @Summary Create a video
// @Tags videos
// @Accept x-www-form-urlencoded
// @Produce json
// @Param id path int true "Video ID"
// @Param name formData string true "name of the video"
// @Param views formData int true "views of the video"
// @Param likes formData int true "likes of the video"
// @Success 201 {object} types.Video
// @Failure 400 {object} response.Response "Missing or invalid field"
// @Failure 404 {object} response.Response "Invalid id"
// @Failure 409 {object} response.Response "Video already exists"
// @Failure 429 {object} response.Response "Rate limit exceeded"
// @Router /video/{id} [put]
func Put(store storage.Storage, publisher events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r)
		if !ok {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errInvalidID))
			return
		}

		req, err := decodePut(r)
		if err != nil {
			writeDecodeError(w, err)
			return
		}

		video := req.Video(id)
		err = store.CreateVideo(r.Context(), video)
		if err != nil {
			if errors.Is(err, storage.ErrVideoExists) {
				response.WriteJSON(w, http.StatusConflict, response.GeneralError(
					fmt.Errorf("video with id %d already exists", id)))
				return
			}
			writeStorageError(w, "create", id, err)
			return
		}
		slog.Info("Video created", slog.Int64("video_id", id))

		publisher.PublishVideoCreated(video)
		response.WriteJSON(w, http.StatusCreated, video)
	}
}

// Patch updates the supplied fields of a video
// @Summary Update a video
// @Description Fields present in the form are applied, including zero values
// @Tags videos
// @Accept x-www-form-urlencoded
// @Produce json
// @Param id path int true "Video ID"
// @Param name formData string false "name of the video"
// @Param views formData int false "views of the video"
// @Param likes formData int false "likes of the video"
// @Success 200 {object} types.Video
// @Failure 400 {object} response.Response "Invalid field"
// @Failure 404 {object} response.Response "Video does not exist"
// @Failure 429 {object} response.Response "Rate limit exceeded"
// @Router /video/{id} [patch]
func Patch(store storage.Storage, publisher events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r)
		if !ok {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errInvalidID))
			return
		}

		req, err := decodePatch(r)
		if err != nil {
			writeDecodeError(w, err)
			return
		}

		video, err := store.UpdateVideo(r.Context(), id, req)
		if err != nil {
			if errors.Is(err, storage.ErrVideoNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(
					fmt.Errorf("video with id %d does not exist, cannot update", id)))
				return
			}
			writeStorageError(w, "update", id, err)
			return
		}

		if !req.Empty() {
			publisher.PublishVideoUpdated(video)
		}
		response.WriteJSON(w, http.StatusOK, video)
	}
}

// Delete removes a video. A missing video is reported in the body with status 200.
// @Summary Delete a video
// @Tags videos
// @Produce json
// @Param id path int true "Video ID"
// @Success 200 {object} map[string]string "Deleted, or an error body when the video does not exist"
// @Failure 429 {object} response.Response "Rate limit exceeded"
// @Router /video/{id} [delete]
func Delete(store storage.Storage, publisher events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r)
		if !ok {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errInvalidID))
			return
		}

		err := store.DeleteVideo(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrVideoNotFound) {
				response.WriteJSON(w, http.StatusOK, map[string]string{"error": "not found"})
				return
			}
			writeStorageError(w, "delete", id, err)
			return
		}
		slog.Info("Video deleted", slog.Int64("video_id", id))

		publisher.PublishVideoDeleted(id)
		response.WriteJSON(w, http.StatusOK, map[string]string{"message": "video deleted"})
	}
}
