package images

import (
	"crypto/md5"
	"fmt"

	"gocv.io/x/gocv"
)

// MatChecksum generates a deterministic checksum for a Mat. Useful for
// detecting duplicate frames and verifying that preprocessing is idempotent.
func MatChecksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}

	data, _ := mat.DataPtrUint8()
	sum := md5.Sum(data)
	return fmt.Sprintf("%x", sum)
}
