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
	"io/ioutil"
	"math"

	"github.com/ghodss/yaml"
	"github.com/notargets/gomultigrid/element"
	"github.com/notargets/gomultigrid/mesh"
	"github.com/notargets/gomultigrid/space"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type InputParameters struct {
	Title               string `yaml:"Title"`
	Mesh                string `yaml:"Mesh"`
	Cells               int    `yaml:"Cells"`
	Family              string `yaml:"Family"`
	PolynomialOrder     int    `yaml:"PolynomialOrder"`
	Vector              bool   `yaml:"Vector"`
	Levels              int    `yaml:"Levels"`
	RefinementsPerLevel int    `yaml:"RefinementsPerLevel"`
	Layers              int    `yaml:"Layers"`
	CheckShared         bool   `yaml:"CheckShared"`
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Mesh\n", ip.Mesh)
	fmt.Printf("[%d]\t\t\t\t= Cells\n", ip.Cells)
	fmt.Printf("[%s]\t\t\t\t= Family\n", ip.Family)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%v]\t\t\t= Vector\n", ip.Vector)
	fmt.Printf("[%d]\t\t\t\t= Levels\n", ip.Levels)
	fmt.Printf("[%d]\t\t\t\t= Refinements Per Level\n", ip.RefinementsPerLevel)
	fmt.Printf("[%d]\t\t\t\t= Layers\n", ip.Layers)
}

// ProlongCmd represents the prolong command
var ProlongCmd = &cobra.Command{
	Use:   "prolong",
	Short: "Prolong an interpolated field through a mesh hierarchy",
	Long: `
Interpolates a polynomial of the element degree on the coarsest level, then
prolongs it level by level to the finest mesh and reports the maximum nodal
deviation from the exact field on every level.

gomultigrid prolong -I deck.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		ipFile, _ := cmd.Flags().GetString("inputParametersFile")
		doProfile, _ := cmd.Flags().GetBool("profile")
		if doProfile {
			defer profile.Start().Stop()
		}
		ip := processProlongInput(ipFile)
		if ip == nil {
			return
		}
		RunProlong(ip)
	},
}

func processProlongInput(ipFile string) (ip *InputParameters) {
	ip = &InputParameters{
		Mesh:                "triangle",
		Cells:               4,
		Family:              "CG",
		PolynomialOrder:     2,
		Levels:              2,
		RefinementsPerLevel: 1,
	}
	if len(ipFile) == 0 {
		exampleFile := `
########################################
Title: "Prolongation Deck"
Mesh: triangle
Cells: 4
Family: CG
PolynomialOrder: 2
Vector: false
Levels: 2
RefinementsPerLevel: 1
Layers: 0
CheckShared: true
########################################
`
		fmt.Printf("no deck supplied (-I), using defaults; example deck:%s", exampleFile)
	} else {
		data, err := ioutil.ReadFile(ipFile)
		if err != nil {
			fmt.Printf("error: unable to read input parameters file [%s]: %s\n", ipFile, err.Error())
			return nil
		}
		if err = ip.Parse(data); err != nil {
			fmt.Printf("error: unable to parse input parameters file [%s]: %s\n", ipFile, err.Error())
			return nil
		}
	}
	ip.Print()
	return
}

func RunProlong(ip *InputParameters) {
	var (
		err error
	)
	base, err := baseMesh(ip.Mesh, ip.Cells)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		return
	}
	family, err := element.ParseFamily(ip.Family)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		return
	}
	mh, err := mesh.NewMeshHierarchy(base, ip.Levels, ip.RefinementsPerLevel)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		return
	}
	h, err := buildSpaceHierarchy(mh, family, ip)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		return
	}
	exact := polynomialField(ip.PolynomialOrder, h.Space(0).Components)
	f := space.NewFunction(h.Space(0))
	if err = f.Interpolate(exact); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		return
	}
	for level := 1; level < h.NumLevels(); level++ {
		fine := space.NewFunction(h.Space(level))
		if ip.CheckShared {
			var diag space.Diagnostics
			if diag, err = space.ProlongWithCheck(f, fine); err != nil {
				fmt.Printf("error: %s\n", err.Error())
				return
			}
			fmt.Printf("level %d: %d shared dof checks, %d mismatches, max delta %8.5e\n",
				level, diag.SharedChecks, diag.Mismatches, diag.MaxDelta)
		} else if err = space.Prolong(f, fine); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			return
		}
		fmt.Printf("level %d: %8d dofs, max deviation from exact %8.5e\n",
			level, fine.Space.NumDofs(), maxDeviation(fine, exact))
		f = fine
	}
}

func buildSpaceHierarchy(mh *mesh.MeshHierarchy, family element.Family, ip *InputParameters) (h *space.FunctionSpaceHierarchy, err error) {
	if ip.Layers > 0 {
		var emh *mesh.ExtrudedMeshHierarchy
		if emh, err = mesh.NewExtrudedMeshHierarchy(mh, ip.Layers); err != nil {
			return
		}
		if ip.Vector {
			return space.NewExtrudedVectorFunctionSpaceHierarchy(emh, family, ip.PolynomialOrder)
		}
		return space.NewExtrudedFunctionSpaceHierarchy(emh, family, ip.PolynomialOrder)
	}
	if ip.Vector {
		return space.NewVectorFunctionSpaceHierarchy(mh, family, ip.PolynomialOrder)
	}
	return space.NewFunctionSpaceHierarchy(mh, family, ip.PolynomialOrder)
}

// polynomialField builds a degree d field replicated over every component, so
// prolongation should reproduce it to rounding error on every level.
func polynomialField(degree, components int) func(x []float64) []float64 {
	return func(x []float64) []float64 {
		v := 1.
		for _, xi := range x {
			v += math.Pow(xi, float64(degree))
		}
		vals := make([]float64, components)
		for c := range vals {
			vals[c] = v * float64(c+1)
		}
		return vals
	}
}

func maxDeviation(f *space.Function, exact func(x []float64) []float64) (dev float64) {
	fs := f.Space
	for k := 0; k < fs.NumCells(); k++ {
		for _, n := range fs.Owned[k] {
			gid := fs.CellDofs[k][n]
			x := fs.PhysCoords(k, n)
			vals := exact(x)
			for c := 0; c < fs.Components; c++ {
				if d := math.Abs(f.Data[gid*fs.Components+c] - vals[c]); d > dev {
					dev = d
				}
			}
		}
	}
	return
}

func init() {
	rootCmd.AddCommand(ProlongCmd)
	ProlongCmd.Flags().StringP("inputParametersFile", "I", "", "yaml deck describing the mesh, element and hierarchy")
	ProlongCmd.Flags().Bool("profile", false, "write a CPU profile for the run")
}
