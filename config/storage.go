package config

// Image store backends
const (
	ImageStoreS3    = "s3"
	ImageStoreMinio = "minio"
)

// StorageConfig holds image upload limits and object store settings
type StorageConfig struct {
	Backend       string `env:"IMAGE_STORE" envDefault:"s3"`
	BucketName    string `env:"S3_BUCKET_NAME" envDefault:"devdish-images"`
	MaxImageBytes int64  `env:"MAX_IMAGE_BYTES" envDefault:"5242880"`
	MaxImageWidth int    `env:"MAX_IMAGE_WIDTH" envDefault:"1600"`
	// Uploads whose header declares more pixels are rejected undecoded
	MaxImagePixels int64 `env:"MAX_IMAGE_PIXELS" envDefault:"40000000"`

	// S3 (or any S3-compatible endpoint)
	AWSRegion   string `env:"AWS_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretKey string `env:"AWS_SECRET_ACCESS_KEY"`

	// MinIO
	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}
