package api

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/markconv/markconv/internal/logx"
)

var openapiJSON []byte

func init() {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData([]byte(openapiSpec))
	if err != nil {
		panic(err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		panic(err)
	}
	b, err := doc.MarshalJSON()
	if err != nil {
		panic(err)
	}
	openapiJSON = b
}

// OpenAPIHandler serves the API schema as JSON.
func OpenAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(openapiJSON); err != nil {
			logx.Log.Error().Err(err).Msg("write openapi")
		}
	}
}

const openapiSpec = `openapi: 3.0.3
info:
  title: MarkConvert API
  description: Convert documents to Markdown and export Markdown to office formats.
  version: "1.0"
paths:
  /healthz:
    get:
      summary: Liveness probe
      responses:
        "200":
          description: Server is up.
  /api/import:
    post:
      summary: Convert an uploaded document to Markdown
      requestBody:
        required: true
        content:
          multipart/form-data:
            schema:
              type: object
              required: [file]
              properties:
                file:
                  type: string
                  format: binary
                format:
                  type: string
                  description: Source format override; detected when omitted.
      responses:
        "200":
          description: Converted document.
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/ImportResponse"
        "400":
          $ref: "#/components/responses/Error"
        "413":
          $ref: "#/components/responses/Error"
        "415":
          $ref: "#/components/responses/Error"
        "422":
          $ref: "#/components/responses/Error"
        "502":
          $ref: "#/components/responses/Error"
  /api/export/{format}:
    post:
      summary: Render Markdown as a downloadable document
      parameters:
        - name: format
          in: path
          required: true
          schema:
            type: string
            enum: [docx, pdf, rtf, html, md]
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/ExportRequest"
      responses:
        "200":
          description: Rendered document, served as an attachment.
        "400":
          $ref: "#/components/responses/Error"
        "500":
          $ref: "#/components/responses/Error"
  /api/formats:
    get:
      summary: List supported import and export formats
      responses:
        "200":
          description: Supported formats.
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/FormatsResponse"
  /api/status:
    get:
      summary: Build, uptime and resource information
      responses:
        "200":
          description: Server status.
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/StatusResponse"
components:
  responses:
    Error:
      description: Conversion or request error.
      content:
        application/json:
          schema:
            $ref: "#/components/schemas/Error"
  schemas:
    ImportResponse:
      type: object
      properties:
        markdown:
          type: string
        message:
          type: string
    ExportRequest:
      type: object
      required: [markdown]
      properties:
        markdown:
          type: string
    FormatsResponse:
      type: object
      properties:
        import:
          type: array
          items:
            type: string
        export:
          type: array
          items:
            type: string
    StatusResponse:
      type: object
      properties:
        version:
          type: string
        build_sha:
          type: string
        build_date:
          type: string
        uptime_seconds:
          type: integer
        memory_bytes:
          type: integer
        goroutines:
          type: integer
        vision:
          type: object
          properties:
            enabled:
              type: boolean
            backend:
              type: string
            model:
              type: string
    Error:
      type: object
      properties:
        error:
          type: string
`

const swaggerPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <title>MarkConvert API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
  window.onload = () => {
    SwaggerUIBundle({
      url: '/api/openapi.json',
      dom_id: '#swagger-ui'
    });
  };
  </script>
</body>
</html>`

// SwaggerHandler serves a minimal Swagger UI.
func SwaggerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(swaggerPage)); err != nil {
			logx.Log.Error().Err(err).Msg("write swagger page")
		}
	}
}
