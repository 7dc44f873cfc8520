// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package export writes a subtree of the virtual hierarchy into an
// archive. The only archive format provided is CPIO, which preserves the
// symbolic links of the "/packages" tree.
package export
