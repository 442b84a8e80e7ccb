package sequence

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadProgress feeds one integer progress value per line of r to fn until
// r is exhausted or ctx is done. Blank lines and lines starting with '#'
// are skipped; anything else that is not an integer is an error.
func ReadProgress(ctx context.Context, r io.Reader, fn func(int)) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("line %d: progress %q is not an integer", line, text)
		}
		fn(v)
	}
	return sc.Err()
}
