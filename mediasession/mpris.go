package mediasession

import (
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"
	"github.com/rickykresslein/yattee/constant"
)

const (
	busName    = "org.mpris.MediaPlayer2." + constant.Yattee
	objectPath = dbus.ObjectPath("/org/mpris/MediaPlayer2")

	rootInterface   = "org.mpris.MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
)

// mprisService exposes the playback session as an MPRIS media player on the
// session bus. Property writes go through the prop helper so the standard
// PropertiesChanged signals fire for now-playing consumers.
type mprisService struct {
	conn  *dbus.Conn
	props *prop.Properties
	coord *Coordinator

	mu       sync.Mutex
	position time.Duration
}

func newMPRISService(coord *Coordinator) (*mprisService, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	s := &mprisService{conn: conn, coord: coord}

	reply, err := conn.RequestName(busName, dbus.NameFlagReplaceExisting)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		_ = conn.Close()
		return nil, fmt.Errorf("bus name %s already owned", busName)
	}

	props, err := prop.Export(conn, objectPath, s.propertySpec())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("export properties: %w", err)
	}
	s.props = props

	if err := conn.Export(s, objectPath, playerInterface); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("export player interface: %w", err)
	}
	if err := conn.Export(s, objectPath, rootInterface); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("export root interface: %w", err)
	}

	return s, nil
}

func (s *mprisService) propertySpec() prop.Map {
	return prop.Map{
		rootInterface: {
			"Identity":            {Value: constant.Yattee, Emit: prop.EmitTrue},
			"CanQuit":             {Value: false, Emit: prop.EmitTrue},
			"CanRaise":            {Value: false, Emit: prop.EmitTrue},
			"HasTrackList":        {Value: false, Emit: prop.EmitTrue},
			"SupportedUriSchemes": {Value: []string{}, Emit: prop.EmitTrue},
			"SupportedMimeTypes":  {Value: []string{}, Emit: prop.EmitTrue},
		},
		playerInterface: {
			"PlaybackStatus": {Value: "Stopped", Emit: prop.EmitTrue},
			"Rate":           {Value: 1.0, Emit: prop.EmitTrue},
			"Metadata":       {Value: map[string]dbus.Variant{}, Emit: prop.EmitTrue},
			"Volume":         {Value: 1.0, Emit: prop.EmitTrue},
			"Position":       {Value: int64(0), Emit: prop.EmitFalse},
			"MinimumRate":    {Value: 0.25, Emit: prop.EmitTrue},
			"MaximumRate":    {Value: 4.0, Emit: prop.EmitTrue},
			"CanGoNext":      {Value: true, Emit: prop.EmitTrue},
			"CanGoPrevious":  {Value: true, Emit: prop.EmitTrue},
			"CanPlay":        {Value: true, Emit: prop.EmitTrue},
			"CanPause":       {Value: true, Emit: prop.EmitTrue},
			"CanSeek":        {Value: true, Emit: prop.EmitTrue},
			"CanControl":     {Value: true, Emit: prop.EmitTrue},
		},
	}
}

// PublishMetadata mirrors the now-playing field set. An empty metadata value
// clears the surface back to stopped.
func (s *mprisService) PublishMetadata(meta Metadata) {
	if meta.VideoID == "" {
		_ = s.props.Set(playerInterface, "Metadata", dbus.MakeVariant(map[string]dbus.Variant{}))
		_ = s.props.Set(playerInterface, "PlaybackStatus", dbus.MakeVariant("Stopped"))
		return
	}

	fields := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath(
			"/org/mpris/MediaPlayer2/yattee/track/" + meta.VideoID,
		)),
		"xesam:title":  dbus.MakeVariant(meta.Title),
		"xesam:artist": dbus.MakeVariant([]string{meta.Author}),
	}
	if meta.Duration > 0 && !meta.Live {
		fields["mpris:length"] = dbus.MakeVariant(meta.Duration.Microseconds())
	}
	if meta.QueueCount > 0 {
		fields["xesam:trackNumber"] = dbus.MakeVariant(int32(meta.QueueIndex + 1))
	}
	if art, ok := s.coord.artwork.localPath(meta.VideoID); ok {
		fields["mpris:artUrl"] = dbus.MakeVariant("file://" + art)
	} else if meta.ArtworkURL != "" {
		fields["mpris:artUrl"] = dbus.MakeVariant(meta.ArtworkURL)
	}

	_ = s.props.Set(playerInterface, "Metadata", dbus.MakeVariant(fields))
}

func (s *mprisService) PublishPosition(pos time.Duration) {
	s.mu.Lock()
	s.position = pos
	s.mu.Unlock()
	_ = s.props.Set(playerInterface, "Position", dbus.MakeVariant(pos.Microseconds()))
}

func (s *mprisService) PublishPlaying(playing bool) {
	status := "Paused"
	if playing {
		status = "Playing"
	}
	_ = s.props.Set(playerInterface, "PlaybackStatus", dbus.MakeVariant(status))
}

func (s *mprisService) Close() {
	_, _ = s.conn.ReleaseName(busName)
	_ = s.conn.Close()
}

// MPRIS player methods, invoked by now-playing consumers over the bus.

func (s *mprisService) Play() *dbus.Error {
	s.coord.commandPlay()
	return nil
}

func (s *mprisService) Pause() *dbus.Error {
	s.coord.commandPause()
	return nil
}

func (s *mprisService) PlayPause() *dbus.Error {
	s.coord.commandToggle()
	return nil
}

func (s *mprisService) Stop() *dbus.Error {
	s.coord.commandPause()
	return nil
}

func (s *mprisService) Next() *dbus.Error {
	s.coord.commandNext()
	return nil
}

func (s *mprisService) Previous() *dbus.Error {
	s.coord.commandPrevious()
	return nil
}

// Seek shifts playback by the given offset in microseconds.
func (s *mprisService) Seek(offset int64) *dbus.Error {
	s.mu.Lock()
	target := s.position + time.Duration(offset)*time.Microsecond
	s.mu.Unlock()
	if target < 0 {
		target = 0
	}
	s.coord.commandScrub(target)
	return nil
}

// SetPosition scrubs to an absolute position in microseconds.
func (s *mprisService) SetPosition(_ dbus.ObjectPath, position int64) *dbus.Error {
	s.coord.commandScrub(time.Duration(position) * time.Microsecond)
	return nil
}

func (s *mprisService) OpenUri(string) *dbus.Error {
	return nil
}
