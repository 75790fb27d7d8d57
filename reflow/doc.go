// SPDX-License-Identifier: Unlicense OR MIT

/*
Package reflow implements drag-and-drop reordering for items laid out in a
fixed grid of slots.

A Grid maps slots, identified by row and column, to pixel rectangles in
row-major order. An Engine owns an ordered sequence of item handles where
the item at index i occupies slot i, and tracks at most one drag Session.

While a session is active, UpdateDrag moves the lifted item to the slot
under the pointer, shifting every item in between by one slot, and reports
how far the host should scroll its viewport when the pointer nears one of
its edges. EndDrag keeps the resulting order; CancelDrag restores the order
captured when the drag began.

The package knows nothing about windows or events. Hosts translate pointer
input into BeginDragAt, UpdateDrag and EndDrag calls and lay out their
widgets according to Items.
*/
package reflow
