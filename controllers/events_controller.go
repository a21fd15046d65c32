package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/phillip/evently-go/actions"
	"github.com/phillip/evently-go/models"
	"github.com/phillip/evently-go/utils"
)

type eventRequest struct {
	actions.EventPayload
	Path string `json:"path"`
}

type eventForm struct {
	Title         string `form:"title"`
	Description   string `form:"description"`
	Location      string `form:"location"`
	ImageURL      string `form:"imageUrl"`
	StartDateTime string `form:"startDateTime"`
	EndDateTime   string `form:"endDateTime"`
	Price         string `form:"price"`
	IsFree        bool   `form:"isFree"`
	URL           string `form:"url"`
	CategoryID    string `form:"categoryId"`
	Path          string `form:"path"`
}

// ---------------- CREATE ----------------
func CreateEvent(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := bindEvent(c, app)
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}

		event, err := app.Events.CreateEvent(c.Request.Context(), actions.CreateEventParams{
			UserID: c.GetString("user_id"),
			Event:  req.EventPayload,
			Path:   req.Path,
		})
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}

		c.Header("ETag", utils.GenerateETag(event.ID, event.UpdatedAt))
		c.JSON(http.StatusCreated, event)
	}
}

// ---------------- LIST ----------------
func ListEvents(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := pageParams(c)
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}

		env, err := app.Events.GetAllEvents(c.Request.Context(), actions.GetAllEventsParams{
			Query:    c.Query("query"),
			Category: c.Query("category"),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}

		if notModified(c, listETag(app, "/", env)) {
			return
		}
		c.JSON(http.StatusOK, env)
	}
}

// ---------------- GET ----------------
func GetEvent(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		event, err := app.Events.GetEventByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}

		version := app.Revalidator.Version("/events/" + id)
		etag := utils.HashETag(utils.GenerateETag(event.ID, event.UpdatedAt), strconv.FormatUint(version, 10))
		if notModified(c, etag) {
			return
		}
		c.Header("Last-Modified", event.UpdatedAt.UTC().Format(http.TimeFormat))
		c.JSON(http.StatusOK, event)
	}
}

// ---------------- RELATED ----------------
func RelatedEvents(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := pageParams(c)
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}

		id := c.Param("id")
		event, err := app.Events.GetEventByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}
		if event.Category == nil {
			c.JSON(http.StatusOK, actions.Envelope[models.EventView]{Data: []models.EventView{}})
			return
		}

		env, err := app.Events.GetRelatedEventsByCategory(c.Request.Context(), actions.GetRelatedEventsByCategoryParams{
			CategoryID: event.Category.ID.Hex(),
			EventID:    id,
			Page:       page,
			Limit:      limit,
		})
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}
		c.JSON(http.StatusOK, env)
	}
}

// ---------------- BY ORGANIZER ----------------
func UserEvents(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		listUserEvents(c, app, c.Param("id"))
	}
}

func MyEvents(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		listUserEvents(c, app, c.GetString("user_id"))
	}
}

func listUserEvents(c *gin.Context, app *App, userID string) {
	page, limit, err := pageParams(c)
	if err != nil {
		respondError(c, app.Logger, err)
		return
	}

	env, err := app.Events.GetEventsByUser(c.Request.Context(), actions.GetEventsByUserParams{
		UserID: userID,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, app.Logger, err)
		return
	}

	if notModified(c, listETag(app, "/profile", env)) {
		return
	}
	c.JSON(http.StatusOK, env)
}

// ---------------- UPDATE ----------------
func UpdateEvent(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := bindEvent(c, app)
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}
		req.ID = c.Param("id")
		if req.Path == "" {
			req.Path = "/events/" + req.ID
		}

		event, err := app.Events.UpdateEvent(c.Request.Context(), actions.UpdateEventParams{
			UserID: c.GetString("user_id"),
			Event:  req.EventPayload,
			Path:   req.Path,
		})
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}

		c.Header("ETag", utils.GenerateETag(event.ID, event.UpdatedAt))
		c.JSON(http.StatusOK, event)
	}
}

// ---------------- DELETE ----------------
func DeleteEvent(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Query("path")
		if path == "" {
			path = "/"
		}

		deleted, err := app.Events.DeleteEvent(c.Request.Context(), actions.DeleteEventParams{
			EventID: c.Param("id"),
			UserID:  c.GetString("user_id"),
			Path:    path,
		})
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}

		if err := app.Images.Delete(c.Request.Context(), deleted.ImageURL); err != nil {
			app.Logger.Warn().Err(err).Str("event_id", deleted.ID.Hex()).Msg("could not delete event image")
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "event deleted successfully",
			"id":      deleted.ID.Hex(),
		})
	}
}

// bindEvent reads an event from JSON or from a multipart form. A form may
// carry an "image" file, which is uploaded and becomes the image URL.
func bindEvent(c *gin.Context, app *App) (eventRequest, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req eventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return eventRequest{}, actions.ValidationError{Field: "body", Message: err.Error()}
		}
		return req, nil
	}

	// --- Bind form fields ---
	var form eventForm
	if err := c.ShouldBind(&form); err != nil {
		return eventRequest{}, actions.ValidationError{Field: "form", Message: err.Error()}
	}
	req := eventRequest{
		EventPayload: actions.EventPayload{
			EventFields: models.EventFields{
				Title:       form.Title,
				Description: form.Description,
				Location:    form.Location,
				ImageURL:    form.ImageURL,
				Price:       form.Price,
				IsFree:      form.IsFree,
				URL:         form.URL,
			},
			CategoryID: form.CategoryID,
		},
		Path: form.Path,
	}

	// --- Parse dates ---
	var err error
	if form.StartDateTime != "" {
		if req.StartDateTime, err = utils.ParseDateTime(form.StartDateTime); err != nil {
			return eventRequest{}, actions.ValidationError{Field: "startDateTime", Message: err.Error()}
		}
	}
	if form.EndDateTime != "" {
		if req.EndDateTime, err = utils.ParseDateTime(form.EndDateTime); err != nil {
			return eventRequest{}, actions.ValidationError{Field: "endDateTime", Message: err.Error()}
		}
	}

	// --- Handle file upload ---
	fileHeader, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return eventRequest{}, actions.ValidationError{Field: "image", Message: "invalid form data"}
	}
	url, err := uploadImage(c, app, fileHeader)
	if err != nil {
		return eventRequest{}, err
	}
	req.ImageURL = url
	return req, nil
}

func uploadImage(c *gin.Context, app *App, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", actions.ValidationError{Field: "image", Message: "failed to open file"}
	}
	defer file.Close()

	url, err := app.Images.Upload(c.Request.Context(), file)
	if errors.Is(err, utils.ErrImagesDisabled) {
		return "", actions.ValidationError{Field: "image", Message: err.Error()}
	}
	if err != nil {
		return "", actions.PersistenceError{Op: "upload image " + fileHeader.Filename, Err: err}
	}
	return url, nil
}

// listETag covers every item revision on the page, the page count and the
// revalidation version of the view the list feeds.
func listETag(app *App, path string, env actions.Envelope[models.EventView]) string {
	parts := make([]string, 0, len(env.Data)+2)
	for _, e := range env.Data {
		parts = append(parts, utils.GenerateETag(e.ID, e.UpdatedAt))
	}
	parts = append(parts,
		strconv.Itoa(env.TotalPages),
		strconv.FormatUint(app.Revalidator.Version(path), 10),
	)
	return utils.HashETag(parts...)
}
