// Package patch applies builder state updates to a raw draft document. The
// update language is a small DSL: keys are dotted paths with optional numeric
// indices ("tools[2].mock.status"), values are assigned in place, and four
// directives operate on arrays of id-carrying objects:
//
//	{"tools": {"_push": {...}}}                  append an element
//	{"tools": {"_update": {"id": "t1", ...}}}    merge fields into the element with that id
//	{"tools": {"_delete": "t1"}}                 remove the element with that id
//	{"tools": {"_rename": {"from": "a", "to": "b"}}}  change an element's id
//
// Sections that hold the document's entity lists are protected: replacing the
// whole array in one assignment is rejected, so a sloppy update cannot wipe
// the tools a builder spent a session authoring.
package patch

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// protectedArrays are document paths whose arrays only change through
// directives.
var protectedArrays = map[string]bool{
	"tools":               true,
	"scenarios":           true,
	"meta_tools":          true,
	"intents.supported":   true,
	"policy.workflows":    true,
	"policy.approvals":    true,
	"grant_mappings":      true,
	"access_policy.rules": true,
	"response_filters":    true,
	"triggers":            true,
}

// Directive keys.
const (
	opPush   = "_push"
	opUpdate = "_update"
	opDelete = "_delete"
	opRename = "_rename"
)

// Apply mutates doc according to update. Each top-level update key is a path;
// the value is either a directive object or a plain value to assign. Errors
// name the offending path and leave previously applied entries in place;
// callers that need atomicity clone the document first.
func Apply(doc map[string]any, update map[string]any) error {
	if doc == nil {
		return errors.New("document must be a non-nil object")
	}
	for path, value := range update {
		if err := applyEntry(doc, path, value); err != nil {
			return errors.Wrapf(err, "applying update to %q", path)
		}
	}
	return nil
}

func applyEntry(doc map[string]any, path string, value any) error {
	if directive, ok := asDirective(value); ok {
		return applyDirective(doc, path, directive)
	}

	if protectedArrays[path] {
		if _, isArray := value.([]any); isArray {
			return errors.Errorf("%q is a protected array; use _push, _update, _delete or _rename", path)
		}
	}

	parent, last, err := descend(doc, path, true)
	if err != nil {
		return err
	}
	return setSegment(parent, last, value)
}

// asDirective recognises an object whose only keys are directive keys.
func asDirective(value any) (map[string]any, bool) {
	obj, ok := value.(map[string]any)
	if !ok || len(obj) == 0 {
		return nil, false
	}
	for key := range obj {
		switch key {
		case opPush, opUpdate, opDelete, opRename:
		default:
			return nil, false
		}
	}
	return obj, true
}

func applyDirective(doc map[string]any, path string, directive map[string]any) error {
	for op, arg := range directive {
		var err error
		switch op {
		case opPush:
			err = applyPush(doc, path, arg)
		case opUpdate:
			err = applyUpdate(doc, path, arg)
		case opDelete:
			err = applyDelete(doc, path, arg)
		case opRename:
			err = applyRename(doc, path, arg)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func applyPush(doc map[string]any, path string, arg any) error {
	parent, last, err := descend(doc, path, true)
	if err != nil {
		return err
	}
	existing, err := getSegment(parent, last)
	if err != nil {
		return err
	}
	list, ok := existing.([]any)
	if existing != nil && !ok {
		return errors.Errorf("_push target is not an array")
	}
	return setSegment(parent, last, append(list, arg))
}

func applyUpdate(doc map[string]any, path string, arg any) error {
	fields, ok := arg.(map[string]any)
	if !ok {
		return errors.New("_update requires an object with an id and the fields to merge")
	}
	id, _ := fields["id"].(string)
	if id == "" {
		return errors.New("_update requires an id")
	}

	element, err := findByID(doc, path, id)
	if err != nil {
		return err
	}
	for key, value := range fields {
		if key == "id" {
			continue
		}
		element[key] = value
	}
	return nil
}

func applyDelete(doc map[string]any, path string, arg any) error {
	// _delete: true removes a scalar key; _delete: "<id>" removes an array
	// element by id.
	if remove, ok := arg.(bool); ok {
		if !remove {
			return nil
		}
		if protectedArrays[path] {
			return errors.Errorf("%q is a protected array; delete elements by id", path)
		}
		parent, last, err := descend(doc, path, false)
		if err != nil {
			return err
		}
		if last.index >= 0 {
			return errors.New("_delete: true cannot target an array index; use an id")
		}
		obj, ok := parent.(map[string]any)
		if !ok {
			return errors.Errorf("path segment %q is not inside an object", last.key)
		}
		delete(obj, last.key)
		return nil
	}

	id, ok := arg.(string)
	if !ok || id == "" {
		return errors.New("_delete requires true or an element id")
	}

	parent, last, err := descend(doc, path, false)
	if err != nil {
		return err
	}
	existing, err := getSegment(parent, last)
	if err != nil {
		return err
	}
	list, ok := existing.([]any)
	if !ok {
		return errors.Errorf("_delete by id targets an array")
	}

	filtered := make([]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			if itemID, _ := obj["id"].(string); itemID == id {
				continue
			}
		}
		filtered = append(filtered, item)
	}
	if len(filtered) == len(list) {
		return errors.Errorf("no element with id %q", id)
	}
	return setSegment(parent, last, filtered)
}

func applyRename(doc map[string]any, path string, arg any) error {
	spec, ok := arg.(map[string]any)
	if !ok {
		return errors.New("_rename requires an object with from and to")
	}
	from, _ := spec["from"].(string)
	to, _ := spec["to"].(string)
	if from == "" || to == "" {
		return errors.New("_rename requires non-empty from and to")
	}

	element, err := findByID(doc, path, from)
	if err != nil {
		return err
	}
	element["id"] = to
	return nil
}

func findByID(doc map[string]any, path, id string) (map[string]any, error) {
	parent, last, err := descend(doc, path, false)
	if err != nil {
		return nil, err
	}
	existing, err := getSegment(parent, last)
	if err != nil {
		return nil, err
	}
	list, ok := existing.([]any)
	if !ok {
		return nil, errors.Errorf("directive targets an array")
	}
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			if itemID, _ := obj["id"].(string); itemID == id {
				return obj, nil
			}
		}
	}
	return nil, errors.Errorf("no element with id %q", id)
}

// segment is one parsed path component: a key and an optional index.
type segment struct {
	key   string
	index int // -1 when the segment has no index
}

func parsePath(path string) ([]segment, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}
	var segments []segment
	for _, part := range strings.Split(path, ".") {
		key := part
		index := -1
		if open := strings.IndexByte(part, '['); open >= 0 {
			if !strings.HasSuffix(part, "]") {
				return nil, errors.Errorf("malformed path segment %q", part)
			}
			var err error
			index, err = strconv.Atoi(part[open+1 : len(part)-1])
			if err != nil || index < 0 {
				return nil, errors.Errorf("malformed index in path segment %q", part)
			}
			key = part[:open]
		}
		if key == "" {
			return nil, errors.Errorf("malformed path segment %q", part)
		}
		segments = append(segments, segment{key: key, index: index})
	}
	return segments, nil
}

// descend walks to the parent of the final segment, optionally creating
// intermediate objects, and returns that parent with the final segment.
func descend(doc map[string]any, path string, create bool) (any, segment, error) {
	segments, err := parsePath(path)
	if err != nil {
		return nil, segment{}, err
	}

	var current any = doc
	for _, seg := range segments[:len(segments)-1] {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, segment{}, errors.Errorf("path segment %q is not inside an object", seg.key)
		}
		next, present := obj[seg.key]
		if !present || next == nil {
			if !create {
				return nil, segment{}, errors.Errorf("path segment %q does not exist", seg.key)
			}
			if seg.index >= 0 {
				return nil, segment{}, errors.Errorf("cannot create array segment %q", seg.key)
			}
			created := make(map[string]any)
			obj[seg.key] = created
			current = created
			continue
		}
		if seg.index >= 0 {
			list, ok := next.([]any)
			if !ok {
				return nil, segment{}, errors.Errorf("path segment %q is not an array", seg.key)
			}
			if seg.index >= len(list) {
				return nil, segment{}, errors.Errorf("index %d out of range for %q", seg.index, seg.key)
			}
			current = list[seg.index]
			continue
		}
		current = next
	}
	return current, segments[len(segments)-1], nil
}

func getSegment(parent any, seg segment) (any, error) {
	obj, ok := parent.(map[string]any)
	if !ok {
		return nil, errors.Errorf("path segment %q is not inside an object", seg.key)
	}
	value := obj[seg.key]
	if seg.index < 0 {
		return value, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, errors.Errorf("path segment %q is not an array", seg.key)
	}
	if seg.index >= len(list) {
		return nil, errors.Errorf("index %d out of range for %q", seg.index, seg.key)
	}
	return list[seg.index], nil
}

func setSegment(parent any, seg segment, value any) error {
	obj, ok := parent.(map[string]any)
	if !ok {
		return errors.Errorf("path segment %q is not inside an object", seg.key)
	}
	if seg.index < 0 {
		obj[seg.key] = value
		return nil
	}
	list, ok := obj[seg.key].([]any)
	if !ok {
		return errors.Errorf("path segment %q is not an array", seg.key)
	}
	if seg.index >= len(list) {
		return errors.Errorf("index %d out of range for %q", seg.index, seg.key)
	}
	list[seg.index] = value
	return nil
}
