package routes

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/pipeline"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/loader"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
)

// CreateGraphHandler builds a graph from an uploaded events document and
// taxonomy, either as a JSON body or as multipart files "events" and
// "taxonomy", and stores the scored snapshot.
func CreateGraphHandler(c echo.Context) error {
	type createGraphBody struct {
		Source   string          `json:"source"`
		Events   json.RawMessage `json:"events" validate:"required"`
		Taxonomy json.RawMessage `json:"taxonomy" validate:"required"`
	}

	data := new(createGraphBody)
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		}
		data.Source = c.FormValue("source")
		if data.Events, err = readFormFile(form, "events"); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Missing events file"})
		}
		if data.Taxonomy, err = readFormFile(form, "taxonomy"); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Missing taxonomy file"})
		}
		if data.Source == "" {
			data.Source = form.File["events"][0].Filename
		}
	} else {
		if err := c.Bind(data); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		}
		if err := c.Validate(data); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		}
	}

	events, taxonomy, err := parseInputs(data.Events, data.Taxonomy)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	return runAndRespond(c, pipeline.OriginHTTP, data.Source, events, taxonomy)
}

// CreateGraphFromS3Handler builds a graph from two objects in the bucket.
func CreateGraphFromS3Handler(c echo.Context) error {
	type createGraphS3Body struct {
		EventsKey   string `json:"events_key" validate:"required"`
		TaxonomyKey string `json:"taxonomy_key" validate:"required"`
	}

	data := new(createGraphS3Body)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}

	app := appFrom(c)
	if app.NewSources == nil {
		return c.JSON(http.StatusServiceUnavailable, messageResponse{Message: "Object storage is not configured"})
	}

	ctx := c.Request().Context()
	sources := app.NewSources()
	eventsFile := loader.NewGraphEventsFile(loader.NewGraphFileParams{FilePath: data.EventsKey, Loader: sources})
	taxonomyFile := loader.NewGraphTaxonomyFile(loader.NewGraphFileParams{FilePath: data.TaxonomyKey, Loader: sources})

	events, taxonomy, err := app.Pipeline.LoadInputs(ctx, eventsFile, taxonomyFile)
	if err != nil {
		if loader.IsInvalidDocument(err) {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
		}
		logger.Error("[Server] Failed to load inputs", "events_key", data.EventsKey, "err", err)
		return c.JSON(http.StatusBadGateway, messageResponse{Message: "Failed to load inputs"})
	}

	return runAndRespond(c, pipeline.OriginS3, data.EventsKey, events, taxonomy)
}

func runAndRespond(c echo.Context, origin pipeline.Origin, source string, events []common.Event, taxonomy common.Taxonomy) error {
	snap, err := appFrom(c).Pipeline.Run(c.Request().Context(), origin, source, events, taxonomy)
	if err != nil {
		logger.Error("[Server] Failed to build graph", "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusCreated, newGraphResponse(snap, snap.Graph, snap.Warnings))
}

func parseInputs(rawEvents, rawTaxonomy []byte) ([]common.Event, common.Taxonomy, error) {
	events, err := loader.ParseEvents(rawEvents)
	if err != nil {
		return nil, common.Taxonomy{}, errors.New("invalid events: " + err.Error())
	}
	taxonomy, err := loader.ParseTaxonomy(rawTaxonomy)
	if err != nil {
		return nil, common.Taxonomy{}, errors.New("invalid taxonomy: " + err.Error())
	}
	return events, taxonomy, nil
}

func readFormFile(form *multipart.Form, field string) ([]byte, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, errors.New("missing form file " + field)
	}
	src, err := files[0].Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}
