// Package process converts collected raw videos into publish-ready vertical
// clips.
//
// Conversion runs through ffmpeg: scale and pad to the target geometry, trim
// to the maximum duration, optionally burn in whisper-generated captions,
// overlay a watermark image, and draw a call-to-action banner. Failures are
// recorded per item so a broken source never stalls the batch.
package process
