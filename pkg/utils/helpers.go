package utils

import (
	"fmt"
	"os"
)

//InSlice returns true if given string appears in given slice
func InSlice(lookingFor string, slice []string) bool {
	for _, s := range slice {
		if s == lookingFor {
			return true
		}
	}

	return false
}

//ListDir returns a list of files/ directories in given path
func ListDir(path string) ([]string, error) {
	names := make([]string, 0)
	if files, err := os.ReadDir(path); err != nil {
		return nil, fmt.Errorf("ListDir: Error, got '%v'", err)
	} else {
		for _, f := range files {
			names = append(names, f.Name())
		}
	}

	return names, nil
}

//PlayerName resolves a player's display name from the id mapping, falling back to "P{id}"
func PlayerName(id int, names map[int]string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}

	return fmt.Sprintf("P%d", id)
}

//Clamp01 limits given value to the [0,1] range
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
