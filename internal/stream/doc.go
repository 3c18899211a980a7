// Package stream decodes the Docker Engine's multiplexed attach/exec
// output format.
//
// When a container runs without a TTY, the engine interleaves stdout and
// stderr on one connection as a sequence of frames:
//
//	header := [8]byte{TAG, 0, 0, 0, SIZE1, SIZE2, SIZE3, SIZE4}
//
// TAG 0 (stdin echo) and 1 are written to stdout, 2 to stderr. SIZE is
// the big-endian payload length; SIZE bytes of payload follow the header.
//
// A Demuxer is fed arbitrary chunks through Write and forwards each
// payload to its sink once the whole frame has arrived, in arrival order.
// Close reports a stream that ended inside a frame.
package stream
