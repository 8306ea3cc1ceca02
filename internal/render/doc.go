// Package render turns mounted card targets into bitmaps.
//
// A card is drawn at its true size of 1080×1350 multiplied by an
// oversampling factor onto a transparent canvas: the background image is
// scaled to cover the card and centered, a dark gradient is laid over the
// lower part, and subtitle, title and body are set from the bottom up. The
// card is clipped to rounded corners, leaving the corners transparent.
package render
