// Package wavio opens WAVE (RIFF/WAV) containers as independent per-channel
// sample streams.
//
// Headers are read from the first kilobyte of the stream: the fmt chunk,
// including the WAVE_FORMAT_EXTENSIBLE block, and the start of the data
// chunk. PCM (8/16/24/32/64/128-bit) and IEEE float (32/64/128-bit) payloads
// are supported. The speaker mask is taken from the extension block or
// inferred from the channel count, and one ChannelStream is built per
// resolved position:
//
//	c, err := wavio.Open("take.wav")
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	left, err := c.Channel(wavio.FrontLeft)
//	if err != nil {
//		return err
//	}
//
//	buf, err := wavio.Read[float64](left, 4096)
//
// Streams convert between the on-disk representation and any sample.Type.
// Create and CreateStream write new containers; the RIFF and data chunk
// sizes are updated on Close.
package wavio
