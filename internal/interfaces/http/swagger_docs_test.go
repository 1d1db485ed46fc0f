package http_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// docs/swagger.json se regenera desde las anotaciones (go generate ./cmd/api). Estos tests
// fallan si el archivo, las anotaciones y las rutas registradas dejan de coincidir.

type swaggerDoc struct {
	Paths       map[string]map[string]json.RawMessage `json:"paths"`
	Definitions map[string]struct {
		Properties map[string]json.RawMessage `json:"properties"`
	} `json:"definitions"`
}

func loadSwagger(t *testing.T) swaggerDoc {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "docs", "swagger.json"))
	require.NoError(t, err)
	var doc swaggerDoc
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

var (
	routerAnnotation = regexp.MustCompile(`(?m)^//\s*@Router\s+(\S+)\s+\[(\w+)\]`)
	modelAnnotation  = regexp.MustCompile(`(?m)^//\s*@(?:Success|Failure|Param)\b.*?\b(dto\.\w+)`)
	fiberParam       = regexp.MustCompile(`:(\w+)`)
)

// annotations lee las anotaciones de los handlers del paquete.
func annotations(t *testing.T) (routes []string, models map[string]bool) {
	t.Helper()
	files, err := filepath.Glob("*_handler.go")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	models = map[string]bool{}
	for _, f := range files {
		src, err := os.ReadFile(f)
		require.NoError(t, err)
		for _, m := range routerAnnotation.FindAllStringSubmatch(string(src), -1) {
			routes = append(routes, strings.ToUpper(m[2])+" "+m[1])
		}
		for _, m := range modelAnnotation.FindAllStringSubmatch(string(src), -1) {
			models[m[1]] = true
		}
	}
	sort.Strings(routes)
	return routes, models
}

func TestSwagger_RutasCoincidenConRouterYAnotaciones(t *testing.T) {
	doc := loadSwagger(t)
	s := newServer(t)

	var registered []string
	for _, r := range s.app.GetRoutes(true) {
		if r.Method == "HEAD" || !strings.HasPrefix(r.Path, "/api/") {
			continue
		}
		registered = append(registered, r.Method+" "+fiberParam.ReplaceAllString(r.Path, "{$1}"))
	}
	sort.Strings(registered)

	var documented []string
	for path, ops := range doc.Paths {
		for method := range ops {
			documented = append(documented, strings.ToUpper(method)+" "+path)
		}
	}
	sort.Strings(documented)

	annotated, _ := annotations(t)
	assert.Equal(t, registered, documented, "docs/swagger.json vs rutas registradas")
	assert.Equal(t, registered, annotated, "anotaciones @Router vs rutas registradas")
}

func TestSwagger_ModelosCoincidenConLosDTO(t *testing.T) {
	doc := loadSwagger(t)
	types := map[string]any{
		"dto.ErrorResponse":              dto.ErrorResponse{},
		"dto.ValidationDetail":           dto.ValidationDetail{},
		"dto.PageResponse":               dto.PageResponse{},
		"dto.ConfirmSaleRequest":         dto.ConfirmSaleRequest{},
		"dto.ConfirmSaleResponse":        dto.ConfirmSaleResponse{},
		"dto.ReplenishmentEventResponse": dto.ReplenishmentEventResponse{},
		"dto.AvailableStockResponse":     dto.AvailableStockResponse{},
		"dto.AdjustmentRequest":          dto.AdjustmentRequest{},
		"dto.ReceiptRequest":             dto.ReceiptRequest{},
		"dto.StockMovementResponse":      dto.StockMovementResponse{},
		"dto.MovementListResponse":       dto.MovementListResponse{},
		"dto.BalanceCheckResponse":       dto.BalanceCheckResponse{},
		"dto.GenerateRunRequest":         dto.GenerateRunRequest{},
		"dto.GenerateRunResponse":        dto.GenerateRunResponse{},
		"dto.RunResponse":                dto.RunResponse{},
		"dto.RunListResponse":            dto.RunListResponse{},
		"dto.RunDetailResponse":          dto.RunDetailResponse{},
		"dto.RequisitionResponse":        dto.RequisitionResponse{},
		"dto.RequisitionItemResponse":    dto.RequisitionItemResponse{},
		"dto.PendingBacklogResponse":     dto.PendingBacklogResponse{},
		"dto.LowStockRequest":            dto.LowStockRequest{},
		"dto.LowStockResponse":           dto.LowStockResponse{},
	}

	_, annotated := annotations(t)
	for name := range annotated {
		_, ok := doc.Definitions[name]
		assert.True(t, ok, "%s anotado pero sin definición", name)
	}
	for name, def := range doc.Definitions {
		v, ok := types[name]
		if !assert.True(t, ok, "definición %s sin DTO", name) {
			continue
		}
		documented := make([]string, 0, len(def.Properties))
		for prop := range def.Properties {
			documented = append(documented, prop)
		}
		sort.Strings(documented)
		assert.Equal(t, jsonFields(reflect.TypeOf(v)), documented, name)
	}
}

// jsonFields nombres JSON del struct, aplanando los embebidos.
func jsonFields(typ reflect.Type) []string {
	var out []string
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			out = append(out, jsonFields(f.Type)...)
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
