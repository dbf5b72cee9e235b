package v1

import (
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema"
)

func compileSingleSchema(name string) *jsonschema.Schema {
	schema, err := compileSchema(&schemaHierarchy{schemas, name})
	if err != nil {
		panic(err)
	}

	return schema
}

// Unit test helper for schema tests.
// Provide a test table with json-strings as keys and set the value to true, if
// the key shall validate against the schema, false otherwise. t will then
// fail if the expectation does not match. Any error during
// schema validation or json parsing will also result in a failure for t.
func schemaTest(testTable map[string]bool, schema *jsonschema.Schema, t *testing.T) {
	for test, expectSuccess := range testTable {
		unmarshalledData, err := jsonschema.DecodeJSON(strings.NewReader(test))

		if err != nil {
			t.Errorf("Can't decode json from test string '%v'", test)
		}

		//run as sub-test
		t.Run(test, func(t *testing.T) {
			err = schema.ValidateInterface(unmarshalledData)

			if (err == nil) != expectSuccess {
				if !expectSuccess {
					t.Errorf("Schema accepted '%v', but is not supposed to", test)
				} else {
					t.Errorf("Schema did not accept '%v' due to the following errors: %v", test, err)
				}
			}
		})

	}
}

func TestCompileNil(t *testing.T) {
	if _, err := compileSchema(nil); err == nil {
		t.Fatal("expected nil hierarchy to fail")
	}
	if _, err := compileSchema(&schemaHierarchy{schemas, "missing.json"}); err == nil {
		t.Fatal("expected unknown main schema to fail")
	}
}

func TestPrimeRangeSchema(t *testing.T) {
	schemaTest(map[string]bool{
		`{"min": 46341, "max": 65535}`:           true,
		`{"min": 3, "max": 4}`:                   true,
		`{"min": 3037000500, "max": 4294967295}`: true,
		`{"min": 2, "max": 65535}`:               false,
		`{"min": 46341}`:                         false,
		`{"max": 65535}`:                         false,
		`{"min": 1.5, "max": 65535}`:             false,
		`{"min": "46341", "max": 65535}`:         false,
		`{"min": 46341, "max": 65535, "x": 1}`:   false,
		`[46341, 65535]`:                         false,
	}, compileSingleSchema("prime-range.json"), t)
}

func TestKeygenSchema(t *testing.T) {
	schemaTest(map[string]bool{
		`{"version": 1}`:                                  true,
		`{"version": 1, "width": 32}`:                     true,
		`{"version": 1, "width": 64}`:                     true,
		`{"version": 1, "width": 48}`:                     false,
		`{"version": 2}`:                                  false,
		`{}`:                                              false,
		`{"version": 1, "seed": -5}`:                      true,
		`{"version": 1, "seed": "now"}`:                   false,
		`{"version": 1, "rounds": 0}`:                     false,
		`{"version": 1, "rounds": 20}`:                    true,
		`{"version": 1, "maxAttempts": 0}`:                false,
		`{"version": 1, "logLevel": "debug"}`:             true,
		`{"version": 1, "logLevel": "loud"}`:              false,
		`{"version": 1, "primes": {"min": 3, "max": 99}}`: true,
		`{"version": 1, "primes": {"min": 3}}`:            false,
		`{"version": 1, "subject": "CN=Test"}`:            false,
	}, keygenSchema, t)
}
