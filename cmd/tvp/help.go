// =============================================================================
// help.go - Help System
// =============================================================================
//
//   ".help"          - Overview of dot-commands, short forms and topics
//   ".help <topic>"  - Detailed help for a dot-command or a George topic
//
// Topics are looked up in two tables: dotHelp for the REPL's own commands and
// georgeHelp for the groups of George commands the object model drives.
//
// =============================================================================

package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// printHelp writes the overview, or the help for topic when it is set.
func printHelp(w io.Writer, topic string) error {
	if topic == "" {
		printHelpOverview(w)
		return nil
	}

	key := strings.ToLower(strings.TrimPrefix(topic, "."))
	if text, ok := dotHelp[key]; ok {
		fmt.Fprintln(w, text)
		return nil
	}
	if text, ok := georgeHelp[key]; ok {
		fmt.Fprintln(w, text)
		return nil
	}
	return fmt.Errorf("no help for '%s'. Type .help to see available topics", topic)
}

func printHelpOverview(w io.Writer) {
	fmt.Fprint(w, `Dot-commands:
  .projects         List open projects
  .scenes           List scenes of the current project
  .clips            List clips of the current scene
  .layers           List layers of the current clip
  .current          Show the current project, scene, clip and layer
  .undo <command>   Run a George command as one undo step
  .help [topic]     Show help
  .quit             Exit the REPL

Anything else is sent to TVPaint as a George command. The tv_ prefix is
optional: "GetWidth" sends "tv_GetWidth".

Short forms:
`)
	for _, word := range slices.Sorted(maps.Keys(shortForms)) {
		fmt.Fprintf(w, "  %-17s %s\n", word, shortForms[word])
	}
	fmt.Fprintf(w, "\nTopics: %s\n", strings.Join(slices.Sorted(maps.Keys(georgeHelp)), ", "))
}

var dotHelp = map[string]string{
	"projects": `.projects

  Lists the open projects in host order. The current project is marked
  with '*'.`,

	"scenes": `.scenes

  Lists the scenes of the current project with their position. The current
  scene is marked with '*'.`,

	"clips": `.clips

  Lists the clips of the current scene with their id and name. The current
  clip is marked with '*'.`,

	"layers": `.layers

  Lists the layers of the current clip with their id and name. The current
  layer is marked with '*'.`,

	"current": `.current

  Shows the ids of the current project, scene, clip and layer.`,

	"undo": `.undo <command>

  Sends one George command between tv_UndoOpenStack and tv_UndoCloseStack,
  so that it is undone as a single step named "tvp".

  Example:
    .undo LayerCreate "ink"`,

	"help": `.help [topic]

  Without a topic, shows the overview. With a topic, shows details for a
  dot-command (".help undo") or a group of George commands (".help clip").`,

	"quit": `.quit

  Closes the connection and exits. Ctrl-D does the same.`,
}

var georgeHelp = map[string]string{
	"project": `Project commands:
  tv_ProjectCurrentId              Id of the current project
  tv_ProjectEnumId <pos>           Id of the project at pos, "none" past the end
  tv_ProjectInfo <id>              "path" width height ratio fps field start
  tv_ProjectSelect <id>            Make a project current
  tv_ProjectNew "path" ...         Create a project
  tv_LoadProject "path"            Open a project file
  tv_SaveProject "path"            Save the current project
  tv_ProjectClose <id>             Close a project
  tv_ResizeProject <w> <h>         Resize into a new project
  tv_FrameRate                     Project and playback frame rates
  tv_StartFrame [frame]            Get or set the first frame number`,

	"scene": `Scene commands:
  tv_SceneCurrentId                Id of the current scene
  tv_SceneEnumId <pos>             Id of the scene at pos, "none" past the end
  tv_SceneNew                      Create a scene after the current one
  tv_SceneDuplicate <id>           Duplicate a scene
  tv_SceneMove <id> <pos>          Move a scene
  tv_SceneClose <id>               Remove a scene`,

	"clip": `Clip commands:
  tv_ClipCurrentId                 Id of the current clip
  tv_ClipEnumId <scene> <pos>      Id of the clip at pos in scene
  tv_ClipSelect <id>               Make a clip current
  tv_ClipInfo <id>                 first last "name" visible selected color in out camera
  tv_ClipName <id> ["name"]        Get or set a clip's name
  tv_ClipNew "name"                Create a clip after the current one
  tv_ClipDuplicate <id>            Duplicate a clip
  tv_ClipMove <id> <scene> <pos>   Move a clip
  tv_ClipClose <id>                Remove a clip`,

	"layer": `Layer commands (current clip):
  tv_LayerCurrentID                Id of the current layer
  tv_LayerGetID <pos>              Id of the layer at pos, "none" past the end
  tv_LayerSet <id>                 Make a layer current
  tv_LayerInfo <id>                visible pos opacity "name" type first last ...
  tv_LayerCreate "name"            Create a layer
  tv_LayerDuplicate "name"         Duplicate the current layer
  tv_LayerRename <id> "name"       Rename a layer
  tv_LayerKill <id>                Remove a layer`,

	"sound": `Sound commands:
  tv_SoundProjectInfo <project> <track>    Track info, -2 past the last track
  tv_SoundProjectNew "path"                Add a track to the current project
  tv_SoundProjectAdjust <track> ...        Mute, volume, offset, fades
  tv_SoundProjectRemove <track>            Remove a track
  tv_SoundClipInfo <clip> <track>          Same for the current clip
  tv_SoundClipNew "path"
  tv_SoundClipAdjust <track> ...
  tv_SoundClipRemove <track>`,

	"replies": `Reading replies:
  Replies are space-separated; double-quoted tokens keep their spaces.
  Failures are signalled in the reply itself: an empty reply, "none",
  "ERROR" or a negative code, depending on the command. The REPL prints
  replies as they are; the object model behind .scenes and friends maps
  them to errors.`,
}
