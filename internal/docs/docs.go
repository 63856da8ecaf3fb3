// Package docs serves the OpenAPI description of the API and a Swagger UI
// on top of it. The UI assets are embedded in the binary.
package docs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"tareas-api/internal/tasks"
)

const (
	Title   = "Tareas API"
	Version = "1.0.0"

	// RoutePrefix is where the UI lives; the document is at RoutePrefix+"/json".
	RoutePrefix = "/docs"
)

// Register validates the document and mounts it, plus the UI, on mux.
func Register(mux *http.ServeMux) error {
	doc, err := Document()
	if err != nil {
		return err
	}
	if err := doc.Validate(context.Background()); err != nil {
		return fmt.Errorf("validate openapi document: %w", err)
	}
	spec, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal openapi document: %w", err)
	}

	mux.HandleFunc("GET "+RoutePrefix+"/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(spec)
	})

	index := RoutePrefix + "/index.html"
	toIndex := func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, index, http.StatusMovedPermanently)
	}
	mux.HandleFunc("GET "+RoutePrefix, toIndex)
	mux.HandleFunc("GET "+RoutePrefix+"/{$}", toIndex)
	mux.Handle("GET "+RoutePrefix+"/", httpSwagger.Handler(httpSwagger.URL(RoutePrefix+"/json")))
	return nil
}

// Document builds the OpenAPI 3 description. Request bodies reuse the
// schemas the handlers validate against.
func Document() (*openapi3.T, error) {
	create, err := requestSchema(tasks.CreateSchema())
	if err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	patch, err := requestSchema(tasks.PatchSchema())
	if err != nil {
		return nil, fmt.Errorf("patch schema: %w", err)
	}

	task := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewIntegerSchema()).
		WithProperty("titulo", openapi3.NewStringSchema()).
		WithProperty("hecho", openapi3.NewBoolSchema()).
		WithRequired([]string{"id", "titulo", "hecho"})

	messages := openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())
	validationError := openapi3.NewObjectSchema().
		WithProperty("formErrors", messages).
		WithProperty("fieldErrors", openapi3.NewObjectSchema().WithAdditionalProperties(messages))

	notFound := openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())

	schemas := openapi3.Schemas{
		"Tarea":           openapi3.NewSchemaRef("", task),
		"CrearTarea":      openapi3.NewSchemaRef("", create),
		"ActualizarTarea": openapi3.NewSchemaRef("", patch),
		"ValidationError": openapi3.NewSchemaRef("", validationError),
		"NotFound":        openapi3.NewSchemaRef("", notFound),
	}
	ref := func(name string) *openapi3.SchemaRef {
		return openapi3.NewSchemaRef("#/components/schemas/"+name, schemas[name].Value)
	}

	idParam := openapi3.Parameters{
		{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewIntegerSchema())},
	}
	health := openapi3.NewObjectSchema().WithProperty("ok", openapi3.NewBoolSchema())
	list := openapi3.NewArraySchema()
	list.Items = ref("Tarea")

	paths := openapi3.NewPaths(
		openapi3.WithPath("/health", &openapi3.PathItem{
			Get: operation("Health check", nil, nil,
				openapi3.WithStatus(200, response("OK", openapi3.NewSchemaRef("", health))),
			),
		}),
		openapi3.WithPath("/tareas", &openapi3.PathItem{
			Get: operation("List tasks", nil, nil,
				openapi3.WithStatus(200, response("OK", openapi3.NewSchemaRef("", list))),
			),
			Post: operation("Create a task", nil, ref("CrearTarea"),
				openapi3.WithStatus(201, response("Created", ref("Tarea"))),
				openapi3.WithStatus(400, response("Invalid payload", ref("ValidationError"))),
			),
		}),
		openapi3.WithPath("/tareas/{id}", &openapi3.PathItem{
			Get: operation("Get a task", idParam, nil,
				openapi3.WithStatus(200, response("OK", ref("Tarea"))),
				openapi3.WithStatus(404, response("Not found", ref("NotFound"))),
			),
			Patch: operation("Partially update a task", idParam, ref("ActualizarTarea"),
				openapi3.WithStatus(200, response("OK", ref("Tarea"))),
				openapi3.WithStatus(400, response("Invalid payload", ref("ValidationError"))),
				openapi3.WithStatus(404, response("Not found", ref("NotFound"))),
			),
			Delete: operation("Delete a task", idParam, nil,
				openapi3.WithStatus(200, response("Removed task", ref("Tarea"))),
				openapi3.WithStatus(404, response("Not found", ref("NotFound"))),
			),
		}),
	)

	return &openapi3.T{
		OpenAPI:    "3.0.3",
		Info:       &openapi3.Info{Title: Title, Version: Version},
		Paths:      paths,
		Components: &openapi3.Components{Schemas: schemas},
	}, nil
}

func operation(summary string, params openapi3.Parameters, body *openapi3.SchemaRef, responses ...openapi3.NewResponsesOption) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Summary = summary
	op.Parameters = params
	op.Responses = openapi3.NewResponses(responses...)
	if body != nil {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(body),
		}
	}
	return op
}

func response(description string, schema *openapi3.SchemaRef) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription(description).WithJSONSchemaRef(schema),
	}
}

// requestSchema converts a JSON Schema request document into an OpenAPI
// schema, dropping the keywords OpenAPI 3.0 does not accept.
func requestSchema(raw json.RawMessage) (*openapi3.Schema, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "$schema")
	delete(m, "$id")

	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var s openapi3.Schema
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
