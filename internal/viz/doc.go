// Package viz draws the dot field in a terminal.
//
//   - [Canvas]: Braille-based pixel canvas with text cells and per-cell pens
//   - [Field]: projects a stage (elements, floor, drop zone) onto a canvas
//     and maps terminal cells back to viewport pixels for mouse input
//   - [Theme]: colors for dots, described dots, the held dot and the zone
//
// Styles for the surrounding chrome (tabs, chips, archive list, status
// line) live in styles.go and are shared by the tui package.
package viz
