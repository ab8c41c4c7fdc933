// Command openapi-compat fails when a revision of the API contract drops a
// path, an operation or a response code that the base contract offers.
// Without -revision it checks against the swagger document compiled into
// the server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"wanderlog/docs"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get": {}, "put": {}, "post": {}, "delete": {}, "patch": {}, "head": {}, "options": {},
}

// contract maps path -> method -> response codes.
type contract map[string]map[string]map[string]struct{}

func main() {
	basePath := flag.String("base", "", "base swagger.yaml or swagger.json path")
	revisionPath := flag.String("revision", "", "revision path; defaults to the built-in document")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> [-revision <path>]")
		os.Exit(2)
	}

	base, err := loadContract(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base contract: %v\n", err)
		os.Exit(1)
	}

	var revision contract
	if strings.TrimSpace(*revisionPath) == "" {
		revision, err = parseContract([]byte(docs.SwaggerInfo.ReadDoc()))
	} else {
		revision, err = loadContract(*revisionPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision contract: %v\n", err)
		os.Exit(1)
	}

	if issues := compare(base, revision); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}
	fmt.Println("openapi compatibility check passed")
}

func loadContract(path string) (contract, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseContract(raw)
}

// parseContract reads YAML or JSON; JSON parses as YAML.
func parseContract(raw []byte) (contract, error) {
	var doc struct {
		Paths map[string]map[string]yaml.Node `yaml:"paths"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, errors.New("missing top-level paths field")
	}

	out := make(contract, len(doc.Paths))
	for path, methods := range doc.Paths {
		ops := make(map[string]map[string]struct{})
		for method, node := range methods {
			m := strings.ToLower(strings.TrimSpace(method))
			if _, ok := supportedMethods[m]; !ok {
				continue
			}
			var op struct {
				Responses map[string]yaml.Node `yaml:"responses"`
			}
			if err := node.Decode(&op); err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(m), path, err)
			}
			codes := make(map[string]struct{}, len(op.Responses))
			for code := range op.Responses {
				if c := strings.ToLower(strings.TrimSpace(code)); c != "" {
					codes[c] = struct{}{}
				}
			}
			ops[m] = codes
		}
		if len(ops) > 0 {
			out[path] = ops
		}
	}
	return out, nil
}

func compare(base, revision contract) []string {
	var issues []string
	for path, baseOps := range base {
		revOps, ok := revision[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}
		for method, baseCodes := range baseOps {
			revCodes, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range baseCodes {
				if _, ok := revCodes[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code)))
				}
			}
		}
	}
	sort.Strings(issues)
	return issues
}
