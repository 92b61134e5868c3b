package envguard

import (
	"sort"

	"github.com/joho/godotenv"

	"github.com/kbukum/testkit/errors"
)

// FromDotenv reads a dotenv file and returns a Set directive per entry, in
// sorted key order. Suites use it to guard a whole fixture environment:
//
//	dirs, err := envguard.FromDotenv("testdata/integration.env")
//	suite := envguard.Default().Suite(dirs...)
func FromDotenv(path string) ([]Directive, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.InvalidInput("path", "cannot read dotenv file").WithCause(err).WithDetail("path", path)
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	directives := make([]Directive, 0, len(keys))
	for _, k := range keys {
		directives = append(directives, Set(k, env[k]))
	}
	return directives, nil
}
