package typetree

// Union merges two trees key-wise into one. A key present in only one operand
// is kept with its subtree; a shared key recurses into both subtrees. On a
// shared node the Any wildcard resolves to the other side, keeping the more
// informative tag; two concrete leaf tags must be equal, and a leaf meeting a
// branch is a shape conflict. Conflicts fail with a *MismatchError naming the
// offending path.
func (t *Tree) Union(o *Tree) (*Tree, error) {
	return unionAt("", t, o)
}

func unionAt(path string, a, b *Tree) (*Tree, error) {
	switch {
	case a.wildcard:
		return b, nil
	case b.wildcard:
		return a, nil
	}

	if a.leaf != nil || b.leaf != nil {
		if a.leaf == b.leaf {
			return a, nil
		}

		return nil, &MismatchError{Path: path, Want: a.String(), Got: b.String()}
	}

	fields := make([]Field, 0, len(a.fields)+len(b.fields))
	for _, f := range a.fields {
		bc, ok := b.Child(f.Key)
		if !ok {
			fields = append(fields, f)
			continue
		}
		merged, err := unionAt(joinPath(path, f.Key), f.Tree, bc)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Key: f.Key, Tree: merged})
	}
	for _, f := range b.fields {
		if _, ok := a.Child(f.Key); !ok {
			fields = append(fields, f)
		}
	}

	return Branch(fields...), nil
}

// Cover merges two trees of the same shape into the widest one: on a shared
// node the Any wildcard absorbs the other side, keeping the more permissive
// tag. Two concrete leaf tags must be equal, branches must carry the same
// keys, and a leaf meeting a branch is a shape conflict. Conflicts fail with
// a *MismatchError naming the offending path.
func (t *Tree) Cover(o *Tree) (*Tree, error) {
	return coverAt("", t, o)
}

func coverAt(path string, a, b *Tree) (*Tree, error) {
	switch {
	case a.wildcard:
		return a, nil
	case b.wildcard:
		return b, nil
	}

	if a.leaf != nil || b.leaf != nil {
		if a.leaf == b.leaf {
			return a, nil
		}

		return nil, &MismatchError{Path: path, Want: a.String(), Got: b.String()}
	}

	if len(a.fields) != len(b.fields) {
		return nil, &MismatchError{Path: path, Want: a.String(), Got: b.String()}
	}

	fields := make([]Field, 0, len(a.fields))
	for _, f := range a.fields {
		bc, ok := b.Child(f.Key)
		if !ok {
			return nil, &MismatchError{Path: path, Want: a.String(), Got: b.String()}
		}
		merged, err := coverAt(joinPath(path, f.Key), f.Tree, bc)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Key: f.Key, Tree: merged})
	}

	return Branch(fields...), nil
}
