package ethereum

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/fd1az/steth-arb/internal/apperror"
)

// LoadABI parses the ABI for name. With dir set, <dir>/<name>.json must
// exist and takes precedence; otherwise the built-in definition is used.
// Both raw ABI arrays and artifact files with an "abi" field are accepted.
func LoadABI(dir, name, builtin string) (abi.ABI, error) {
	if dir == "" {
		parsed, err := abi.JSON(strings.NewReader(builtin))
		if err != nil {
			return abi.ABI{}, apperror.New(apperror.CodeABILoadFailed,
				apperror.WithCause(err), apperror.WithContext(name+" (built-in)"))
		}
		return parsed, nil
	}

	path := filepath.Join(dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, apperror.New(apperror.CodeABILoadFailed,
			apperror.WithCause(err), apperror.WithContext(path))
	}

	parsed, err := parseABIFile(data)
	if err != nil {
		return abi.ABI{}, apperror.New(apperror.CodeABILoadFailed,
			apperror.WithCause(err), apperror.WithContext(path))
	}
	return parsed, nil
}

func parseABIFile(data []byte) (abi.ABI, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return abi.ABI{}, errors.New("empty ABI file")
	}

	if trimmed[0] == '{' {
		inner, err := artifactABI(trimmed)
		if err != nil {
			return abi.ABI{}, err
		}
		trimmed = inner
	}

	return abi.JSON(bytes.NewReader(trimmed))
}

// artifactABI extracts the "abi" array from a compiler artifact.
func artifactABI(data []byte) ([]byte, error) {
	var artifact struct {
		ABI json.RawMessage `json:"abi"`
	}
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}
	if len(artifact.ABI) == 0 {
		return nil, errors.New(`artifact has no "abi" field`)
	}
	return artifact.ABI, nil
}

// RequireMethods fails unless every method exists in parsed.
func RequireMethods(parsed abi.ABI, name string, methods ...string) error {
	var missing []string
	for _, m := range methods {
		if _, ok := parsed.Methods[m]; !ok {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		return apperror.New(apperror.CodeABILoadFailed,
			apperror.WithContext(fmt.Sprintf("%s: missing methods %s", name, strings.Join(missing, ", "))))
	}
	return nil
}
