package contracts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"path"
	"strings"

	"ads-service/internal/core/domain"
	"ads-service/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Имена схем для ValidateRequest
const (
	SchemaCreateAd = "create-ad"
	SchemaUpdateAd = "update-ad"
	SchemaGeocode  = "geocode"
)

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	// Сначала регистрируем все схемы как ресурсы, чтобы работали `$ref`
	err := fs.WalkDir(schemas.SchemasFS, "requests", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".json") {
			file, err := schemas.SchemasFS.Open(p)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := compiler.AddResource(p, file); err != nil {
				log.Fatalf("failed to add schema resource %s: %v", p, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("error walking and adding schema resources: %v", err)
	}

	// Второй проход - компиляция и регистрация под коротким именем файла
	err = fs.WalkDir(schemas.SchemasFS, "requests", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".json") {
			schema, err := compiler.Compile(p)
			if err != nil {
				log.Fatalf("could not compile schema %s: %v", p, err)
			}
			key := strings.TrimSuffix(path.Base(p), ".json")
			compiledSchemas[key] = schema
		}
		return nil
	})
	if err != nil {
		log.Fatalf("error walking and compiling schemas: %v", err)
	}
}

// ValidateRequest проверяет тело запроса по схеме с именем name.
// Любая проблема (включая невалидный JSON) заворачивается в ErrInvalidInput.
func ValidateRequest(name string, body []byte) error {
	schema, ok := compiledSchemas[name]
	if !ok {
		return fmt.Errorf("schema '%s' is not registered", name)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("%w: request body is not valid JSON", domain.ErrInvalidInput)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
