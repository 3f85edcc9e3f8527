// Copyright 2024 The Termcore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package termcore is a cross-platform terminal I/O core for text user
// interfaces. It owns a cell-accurate screen model (Buffer), computes the
// minimal byte stream needed to bring a real terminal in line with that
// model, and delivers a normalized stream of keyboard, mouse, and resize
// events parsed out of raw terminal input.
//
// Widget hierarchies, dialogs, menus, and application event dispatch are
// not part of this package; it is the engine beneath them. Construct a
// Terminal with Open, write into its Buffer, call Flush to realize
// changes, and call PollEvent in a loop to receive input.
package termcore
