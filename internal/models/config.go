package models

import (
	"path"

	"github.com/kardianos/osext"
)

// AppConfig is the application's main configuration structure
type AppConfig struct {
	// The directory the console keeps its data in - the event collection file
	// lives at <DataDir>/events.json. Defaults to the /data subdirectory of
	// the folder the executable resides in
	DataDir string `json:"dataDir"`
	// The IP address to listen at - including the port number
	ListenAddress string `json:"listenAddress"`
	// IANA name of the timezone the operator works in. Wall-clock time input
	// is interpreted in this zone and conflict messages are rendered in it
	DisplayTimezone string `json:"displayTimezone"`
	// The credentials for the operator account that is created on startup
	Operator *OperatorConfig `json:"operator"`
	// Connection settings for the S3-compatible object storage that holds the
	// uploaded track and cover files
	Storage StorageConfig `json:"storage"`
}

// The OperatorConfig struct configures the single operator account that can log in
// In a later version, this will be replaced by a full user management
type OperatorConfig struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// StorageConfig holds the credentials and addressing for the object storage bucket
type StorageConfig struct {
	// The S3 API endpoint, e.g. https://<account>.r2.cloudflarestorage.com
	Endpoint string `json:"endpoint"`
	// Region name to sign requests with - R2 uses "auto"
	Region string `json:"region"`
	// Name of the bucket the media objects are stored in
	Bucket          string `json:"bucket"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	// Public base URL the bucket's objects are served under. Object keys are
	// derived from asset URLs by stripping this prefix
	PublicBaseURL string `json:"publicBaseUrl"`
}

// GetDefaultConfig returns the default configuration values for the application
func GetDefaultConfig() (*AppConfig, error) {
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		return nil, err
	}
	return &AppConfig{
		DataDir:         path.Join(execDir, "data"),
		ListenAddress:   ":3000",
		DisplayTimezone: "Asia/Colombo",
		Operator: &OperatorConfig{
			Name:     "admin",
			Password: "changeme",
		},
		Storage: StorageConfig{
			Region: "auto",
		},
	}, nil
}
