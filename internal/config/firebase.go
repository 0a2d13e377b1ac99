package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Env vars read by the build-time config generation step
var firebaseEnvVars = []string{
	"FIREBASE_API_KEY",
	"FIREBASE_AUTH_DOMAIN",
	"FIREBASE_PROJECT_ID",
	"FIREBASE_STORAGE_BUCKET",
	"FIREBASE_MESSAGING_SENDER_ID",
	"FIREBASE_APP_ID",
}

// FirebaseConfig is the hosted deployment's backend configuration
type FirebaseConfig struct {
	APIKey            string `json:"apiKey"`
	AuthDomain        string `json:"authDomain"`
	ProjectID         string `json:"projectId"`
	StorageBucket     string `json:"storageBucket"`
	MessagingSenderID string `json:"messagingSenderId"`
	AppID             string `json:"appId"`
}

// FirebaseFromEnv reads the config from environment variables. ok is
// false unless every variable is present; callers then keep whatever
// developer-supplied fallback config is already in place.
func FirebaseFromEnv() (FirebaseConfig, bool) {
	values := make(map[string]string, len(firebaseEnvVars))
	for _, key := range firebaseEnvVars {
		value := os.Getenv(key)
		if value == "" {
			return FirebaseConfig{}, false
		}
		values[key] = value
	}

	return FirebaseConfig{
		APIKey:            values["FIREBASE_API_KEY"],
		AuthDomain:        values["FIREBASE_AUTH_DOMAIN"],
		ProjectID:         values["FIREBASE_PROJECT_ID"],
		StorageBucket:     values["FIREBASE_STORAGE_BUCKET"],
		MessagingSenderID: values["FIREBASE_MESSAGING_SENDER_ID"],
		AppID:             values["FIREBASE_APP_ID"],
	}, true
}

// WriteArtifact emits the static config artifact consumed at startup:
// a single object literal assignment
func (f FirebaseConfig) WriteArtifact(path string) error {
	body, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode firebase config: %w", err)
	}

	content := "// Auto-generated config from environment variables\n" +
		"window.__firebaseConfig = " + string(body) + ";\n"

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write config artifact: %w", err)
	}
	return nil
}
