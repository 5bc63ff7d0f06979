package constant

// Global functions every Lua resolver script must define.
const (
	SearchVideosFn = "SearchVideos"
	VideoInfoFn    = "VideoInfo"
	VideoStreamsFn = "VideoStreams"
)
