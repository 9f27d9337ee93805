package repo

import (
	"fmt"
	"path"
	"strings"

	"github.com/ruminaider/plm/internal/errs"
)

// ParseSourcePath validates and normalizes a marketplace plugin's
// `source_path` subdirectory reference, grounded exactly on the original
// implementation's normalize_subdir_path: backslashes are folded to
// forward slashes before validation, drive-letter and UNC forms are
// rejected outright, absolute paths and ".." components are rejected, "."
// components are dropped, and the result is reconstructed with "/"
// separators so it is platform-independent.
func ParseSourcePath(input string) (string, error) {
	normalized := strings.ReplaceAll(input, `\`, "/")

	if len(normalized) >= 2 && isASCIILetter(normalized[0]) && normalized[1] == ':' {
		return "", errs.New(errs.InvalidSource, "repo.ParseSourcePath",
			fmt.Errorf("subdir must be a relative path without drive letters"))
	}
	if strings.HasPrefix(normalized, "//") {
		return "", errs.New(errs.InvalidSource, "repo.ParseSourcePath",
			fmt.Errorf("subdir must be a relative path without UNC paths"))
	}
	if path.IsAbs(normalized) {
		return "", errs.New(errs.InvalidSource, "repo.ParseSourcePath",
			fmt.Errorf("subdir must be relative"))
	}

	var parts []string
	for _, seg := range strings.Split(normalized, "/") {
		switch seg {
		case "":
			continue
		case ".":
			continue
		case "..":
			return "", errs.New(errs.InvalidSource, "repo.ParseSourcePath",
				fmt.Errorf("subdir contains '..'"))
		default:
			parts = append(parts, seg)
		}
	}

	if len(parts) == 0 {
		return "", errs.New(errs.InvalidSource, "repo.ParseSourcePath",
			fmt.Errorf("local plugin must specify a subdirectory (e.g., './plugins/my-plugin'); use an external source for root-level plugins"))
	}

	return strings.Join(parts, "/"), nil
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
