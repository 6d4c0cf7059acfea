package avatarsvc

// AvatarConfig holds configuration parameters for the profile picture service.
type AvatarConfig struct {
	// MaxSize is the largest accepted upload in bytes.
	MaxSize int64 `env:"MAX_SIZE" default:"2097152"` // 2 MiB

	// Width is the width pictures are scaled down to. Narrower pictures are kept as they are.
	Width int `env:"WIDTH" default:"256"`

	// Interpolator specifies the image scaling algorithm to use.
	// Valid values are: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear"
	Interpolator string `env:"INTERPOLATOR" default:"catmullrom"`
}
