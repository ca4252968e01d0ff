package preprocess

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadEncoder reads a fitted label encoder from a JSON file.
func LoadEncoder(path string) (*LabelEncoder, error) {
	var raw struct {
		Classes []string `json:"classes"`
	}
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	enc, err := NewLabelEncoder(raw.Classes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return enc, nil
}

// LoadScaler reads a fitted standard scaler from a JSON file.
func LoadScaler(path string) (*StandardScaler, error) {
	var raw StandardScaler
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	s, err := NewStandardScaler(raw.Mean, raw.Scale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
