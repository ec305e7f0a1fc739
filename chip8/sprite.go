package chip8

// isHires reports whether the video buffer is currently showing the
// variant's high-resolution mode (after 00FF), as opposed to its native
// low-res dimensions.
func (c *Core) isHires() bool {
	return c.video.Width() > c.Quirks.ScreenWidth || c.video.Height() > c.Quirks.ScreenHeight
}

// drawSprite implements DXYN, honoring the wrap-vs-clip, lores-Dxy0, and
// SUPER-CHIP 1.1 collision quirks. VF is set to 1 if any drawn pixel
// collided with one already set, 0 otherwise, except SUPER-CHIP 1.1's
// hires mode, which reports the number of sprite rows that produced a
// collision plus the number of rows clipped off the bottom edge.
func drawSprite(c *Core, q Quirks, vx, vy, n byte) {
	height := int(n)
	rowBytes := 1

	if n == 0 {
		height = 16
		if q.LoresDxy0Is16x16 || c.isHires() {
			rowBytes = 2
		}
	}

	mask := c.planeMask()
	collidedRows := 0
	clippedRows := 0

	for row := 0; row < height; row++ {
		y := int(vy) + row

		if q.WrapSprites {
			y %= c.video.Height()
		} else if y >= c.video.Height() {
			clippedRows++
			continue
		}

		rowCollision := false

		for b := 0; b < rowBytes; b++ {
			spriteByte := c.Memory[int(c.I)+row*rowBytes+b]

			for bit := 0; bit < 8; bit++ {
				if spriteByte&(0x80>>uint(bit)) == 0 {
					continue
				}

				x := int(vx) + b*8 + bit

				if q.WrapSprites {
					x %= c.video.Width()
				} else if x >= c.video.Width() {
					continue
				}

				if c.video.XorPixelReturnCollision(x, y, mask) {
					rowCollision = true
				}
			}
		}

		if rowCollision {
			collidedRows++
		}
	}

	switch {
	case q.SC11Collisions && c.isHires():
		c.V[0xF] = byte(collidedRows + clippedRows)
	case collidedRows > 0:
		c.V[0xF] = 1
	default:
		c.V[0xF] = 0
	}
}
