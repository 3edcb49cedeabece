package appconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/openews/report-server/pkg/sloger"
	"github.com/sethvargo/go-envconfig"
) // .import

var logger *slog.Logger

func init() {
	type Empty struct{}
	pkgParts := strings.Split(reflect.TypeOf(Empty{}).PkgPath(), "/")
	// add package name to app logger
	logger = sloger.With("pkg", pkgParts[len(pkgParts)-1])
}

type RootResp struct {
	System     string `json:"system"`
	Product    string `json:"product"`
	App        string `json:"app"`
	ServerTime string `json:"server_time"`
} // .rootResp

type AppConfig struct {

	// App and for Logger
	LoggerDebugOn bool `env:"LOGGER_DEBUG_ON"`

	Environment string `env:"ENVIRONMENT, default=DEV"`

	// Server
	ServerProtocol string `env:"SERVER_PROTOCOL, default=http"`
	ServerHostname string `env:"SERVER_HOSTNAME, default=localhost"`
	ServerPort     string `env:"SERVER_PORT, default=8080"`

	// Report listing and dashboards
	PaginationRowsPerPage int    `env:"PAGINATION_ROWS_PER_PAGE, default=50"`
	MaxGroupedHealthRisks int    `env:"MAX_GROUPED_HEALTH_RISKS, default=5"`
	MaxGroupedVillages    int    `env:"MAX_GROUPED_VILLAGES, default=5"`
	EpiWeekStartDay       string `env:"EPI_WEEK_START_DAY, default=Sunday"`

	// Authorized API key list; the blob path is read per request because the
	// key list rotates independently of server restarts.
	AuthorizedApiKeysBlobPath string `env:"AUTHORIZED_API_KEYS_BLOB_PATH"`

	// Localized strings for health risk names and anonymization labels
	StringsFilePath string `env:"STRINGS_FILE_PATH, default=./configs/strings.yml"`

	// Viewer token verification
	TokenSigningSecret string `env:"TOKEN_SIGNING_SECRET"`

	// Local folders used when no cloud backend is bound
	LocalKeyStoreFolder string `env:"LOCAL_KEY_STORE_FOLDER, default=./local/keys"`
	LocalEventsFolder   string `env:"LOCAL_EVENTS_FOLDER, default=./local/events"`

	// Azure config
	AzureConnection *AzureStorageConfig `env:", prefix=AZURE_, noinit"`

	// S3 config
	S3Connection *S3StorageConfig `env:", prefix=S3_, noinit"`

	// Report queue
	PublisherConnection     *AzureQueueConfig `env:", prefix=PUBLISHER_, noinit"`
	SubscriberConnection    *AzureQueueConfig `env:", prefix=SUBSCRIBER_, noinit"`
	SNSPublisherConnection  *SNSConfig        `env:", prefix=SNS_PUBLISHER_, noinit"`
	SQSSubscriberConnection *SQSConfig        `env:", prefix=SQS_SUBSCRIBER_, noinit"`

	// Report store
	PostgresConnection *PostgresConfig `env:", prefix=PG_, noinit"`

	// Best-effort case registration after accept/dismiss
	RegistrationApiBaseUrl string `env:"REGISTRATION_API_BASE_URL"`
} // .AppConfig

func (conf *AppConfig) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	jsonResp, err := json.Marshal(RootResp{
		System:     "EWS",
		Product:    "REPORT API",
		App:        "report server",
		ServerTime: time.Now().Format(time.RFC3339Nano),
	}) // .jsonResp
	if err != nil {
		errMsg := "error marshal json for root response"
		logger.Error(errMsg, "error", err.Error())
		http.Error(w, errMsg, http.StatusInternalServerError)
		return
	} // .if

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonResp)
}

type AzureStorageConfig struct {
	StorageName       string `env:"STORAGE_ACCOUNT"`
	StorageKey        string `env:"STORAGE_KEY"`
	ContainerEndpoint string `env:"ENDPOINT"`
} // .AzureStorageConfig

type S3StorageConfig struct {
	Endpoint   string `env:"ENDPOINT"`
	BucketName string `env:"BUCKET_NAME"`
}

type AzureQueueConfig struct {
	ConnectionString string `env:"CONNECTION_STRING"`
	Topic            string `env:"TOPIC"`
	Queue            string `env:"QUEUE"`
	Subscription     string `env:"SUBSCRIPTION"`
	MaxMessages      int    `env:"MAX_MESSAGES"`
}

type SNSConfig struct {
	EventArn string `env:"EVENT_ARN"`
}

type SQSConfig struct {
	QueueURL    string `env:"QUEUE_URL"`
	MaxMessages int    `env:"MAX_MESSAGES"`
}

type PostgresConfig struct {
	ConnectionString string `env:"CONNECTION_STRING"`
}

func (azc *AzureStorageConfig) Check() error {
	errs := []error{}
	if azc.StorageName == "" {
		errs = append(errs, &MissingConfigError{
			ConfigName: "AzStorageName",
		})
	}
	if azc.StorageKey == "" {
		errs = append(errs, &MissingConfigError{
			ConfigName: "AzStorageKey",
		})
	}
	return errors.Join(errs...)
}

var LoadedConfig = &AppConfig{}

func Handler() http.Handler {
	return LoadedConfig
}

// ParseConfig loads app configuration based on environment variables and returns AppConfig struct
func ParseConfig(ctx context.Context) (AppConfig, error) {

	var ac AppConfig
	if err := envconfig.Process(ctx, &ac); err != nil {
		return AppConfig{}, err
	} // .if

	if ac.AzureConnection != nil {
		if ac.AzureConnection.StorageName == "" || ac.AzureConnection.StorageKey == "" {
			return AppConfig{}, fmt.Errorf("missing required values for connecting to Azure")
		}
		if ac.AzureConnection.ContainerEndpoint == "" {
			ac.AzureConnection.ContainerEndpoint = fmt.Sprintf("https://%s.blob.core.windows.net", ac.AzureConnection.StorageName)
		}
	}

	if ac.S3Connection != nil {
		if ac.S3Connection.BucketName == "" {
			return AppConfig{}, fmt.Errorf("missing required values for connecting to AWS S3")
		}
	}

	if ac.PaginationRowsPerPage < 1 {
		return AppConfig{}, fmt.Errorf("pagination rows per page must be positive")
	}

	if _, err := ParseWeekday(ac.EpiWeekStartDay); err != nil {
		return AppConfig{}, err
	}

	LoadedConfig = &ac
	return ac, nil
} // .ParseConfig

// ParseWeekday resolves the configured epi week start day name.
func ParseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unrecognized epi week start day: %q", name)
}
