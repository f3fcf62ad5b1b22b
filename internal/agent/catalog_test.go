package agent

import "testing"

// TestSpawnPermissionMonotonicity verifies spec.md §8 property 5:
// allowed_agents_for(A) must be a subset of allowed_agents_for(parent)
// for every agent A that some parent can spawn.
func TestSpawnPermissionMonotonicity(t *testing.T) {
	c := BuildCatalog()
	for _, parentName := range c.Names() {
		parent, _ := c.Get(parentName)
		for childName := range parent.SpawnAllowlist {
			child, ok := c.Get(childName)
			if !ok {
				t.Fatalf("spawn target %q not in catalog", childName)
			}
			for grandchild := range child.SpawnAllowlist {
				if !parent.SpawnAllowlist[grandchild] {
					t.Fatalf("spawn set not monotonic: %s may spawn %s but its parent %s may not", childName, grandchild, parentName)
				}
			}
		}
	}
}

func TestLeafAgentsCannotSpawn(t *testing.T) {
	c := BuildCatalog()
	for _, name := range c.Names() {
		d, _ := c.Get(name)
		if d.Level == LevelLeaf && len(d.SpawnAllowlist) != 0 {
			t.Fatalf("leaf agent %q has non-empty spawn allowlist", name)
		}
	}
}

func TestUnknownAgentDefaultsToLeafSpawnSet(t *testing.T) {
	c := BuildCatalog()
	if got := c.SpawnTargetsFor("does-not-exist"); len(got) != 0 {
		t.Fatalf("expected no spawn targets for unknown agent, got %v", got)
	}
}
