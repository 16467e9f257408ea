/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/notargets/gomultigrid/mesh"
	"github.com/spf13/cobra"
)

// HierarchyCmd represents the hierarchy command
var HierarchyCmd = &cobra.Command{
	Use:   "hierarchy",
	Short: "Build a nested mesh hierarchy and report its levels",
	Long: `
Builds a hierarchy of uniformly refined meshes over a unit domain and prints
cell and vertex counts per level together with the refinement multiplicity.

gomultigrid hierarchy -m triangle -c 4 -l 3`,
	Run: func(cmd *cobra.Command, args []string) {
		meshType, _ := cmd.Flags().GetString("mesh")
		cells, _ := cmd.Flags().GetInt("cells")
		levels, _ := cmd.Flags().GetInt("levels")
		refsPerLevel, _ := cmd.Flags().GetInt("refinementsPerLevel")
		layers, _ := cmd.Flags().GetInt("layers")

		base, err := baseMesh(meshType, cells)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			return
		}
		mh, err := mesh.NewMeshHierarchy(base, levels, refsPerLevel)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			return
		}
		fmt.Printf("%s hierarchy, %d refinement(s) per level\n",
			base.Kind.String(), refsPerLevel)
		for l, m := range mh.Meshes {
			EToE, _ := m.Connect()
			var boundary int
			for _, nbrs := range EToE {
				for _, nbr := range nbrs {
					if nbr == -1 {
						boundary++
					}
				}
			}
			fmt.Printf("level %d: %6d cells, %6d vertices, %5d boundary faces\n",
				l, m.NumCells(), m.NumVerts(), boundary)
		}
		if layers > 0 {
			emh, err := mesh.NewExtrudedMeshHierarchy(mh, layers)
			if err != nil {
				fmt.Printf("error: %s\n", err.Error())
				return
			}
			fmt.Printf("extruded with %d layers: %d cells on the finest level\n",
				layers, emh.Meshes[len(emh.Meshes)-1].NumCells())
		}
	},
}

func baseMesh(meshType string, cells int) (m *mesh.Mesh, err error) {
	switch meshType {
	case "interval":
		m = mesh.NewUnitIntervalMesh(cells)
	case "triangle":
		m = mesh.NewUnitSquareMesh(cells, cells)
	case "quad":
		m = mesh.NewUnitQuadMesh(cells, cells)
	default:
		err = fmt.Errorf("unknown mesh type [%s], must be one of interval, triangle, quad", meshType)
	}
	return
}

func init() {
	rootCmd.AddCommand(HierarchyCmd)
	HierarchyCmd.Flags().StringP("mesh", "m", "triangle", "base mesh type: interval, triangle, quad")
	HierarchyCmd.Flags().IntP("cells", "c", 4, "cells per direction in the base mesh")
	HierarchyCmd.Flags().IntP("levels", "l", 2, "number of refinement levels above the base")
	HierarchyCmd.Flags().IntP("refinementsPerLevel", "r", 1, "uniform refinements between consecutive levels")
	HierarchyCmd.Flags().Int("layers", 0, "extrude each level with this many layers (0 = no extrusion)")
}
